package export

import "testing"

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"":              "CV.pdf",
		"Jane Doe":      "Jane Doe.pdf",
		"Ali Veli":      "Ali Veli.pdf",
		"a/b\\c":        "a-b-c.pdf",
		"../etc/passwd": "..-etc-passwd.pdf",
		"Ayşe\nYılmaz":  "AyşeYılmaz.pdf",
		"\t":            "CV.pdf",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Fatalf("FileName(%q): expected %q got %q", in, want, got)
		}
	}
}
