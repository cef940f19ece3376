package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"cvBuilder/internal/cv"
)

//go:embed templates/cv.html.tmpl
var templateFS embed.FS

const (
	// RootSelector 是导出时截图的根元素。
	RootSelector = "#cv-preview"
	// ReadySelector 在页面完成布局后存在，截图驱动等待它出现。
	ReadySelector = "#cv-render-ready"
	// PageWidthMM 是预览画布的固定逻辑宽度（A4 纵向）。
	PageWidthMM = 210.0
	// PageMinHeightMM 是画布的最小高度，内容更长时画布向下延伸。
	PageMinHeightMM = 297.0
)

// Surface 是一次渲染的可截图画布。
type Surface struct {
	HTML          string
	RootSelector  string
	ReadySelector string
	Revision      uint64
}

// Labels 是预览中的静态文案。
type Labels struct {
	NamePlaceholder string
	PhotoAlt        string
	Education       string
	Experience      string
	Skills          string
	Languages       string
}

// DefaultLabels 与原版界面保持一致（土耳其语）。
var DefaultLabels = Labels{
	NamePlaceholder: "İsminiz",
	PhotoAlt:        "Profil",
	Education:       "Eğitim",
	Experience:      "İş Deneyimi",
	Skills:          "Yetenekler",
	Languages:       "Diller",
}

// Renderer 将文档快照确定性地映射为 HTML 画布。
type Renderer struct {
	tmpl      *template.Template
	sanitizer *bluemonday.Policy
	labels    Labels
}

// NewRenderer 解析内嵌模板。
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/cv.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse preview template: %w", err)
	}
	return &Renderer{
		tmpl:      tmpl,
		sanitizer: bluemonday.UGCPolicy(),
		labels:    DefaultLabels,
	}, nil
}

type entryView struct {
	Heading     string
	Date        string
	Description template.HTML
}

type pageView struct {
	Title      string
	Labels     Labels
	Personal   cv.PersonalInfo
	Photo      template.URL
	Education  []entryView
	Experience []entryView
	Skills     []string
	Languages  []string
	Revision   uint64

	PageWidthMM     float64
	PageMinHeightMM float64
}

// Render 渲染快照。渲染是同步的，返回的画布与快照完全对应。
func (r *Renderer) Render(doc cv.Snapshot) (Surface, error) {
	view := r.buildView(doc)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "cv.html.tmpl", view); err != nil {
		return Surface{}, fmt.Errorf("execute preview template: %w", err)
	}

	return Surface{
		HTML:          buf.String(),
		RootSelector:  RootSelector,
		ReadySelector: ReadySelector,
		Revision:      doc.Revision,
	}, nil
}

func (r *Renderer) buildView(doc cv.Snapshot) pageView {
	view := pageView{
		Title:    doc.Personal.Name,
		Labels:   r.labels,
		Personal: doc.Personal,
		Photo:    photoURL(doc.Personal.Photo),
		Revision: doc.Revision,

		PageWidthMM:     PageWidthMM,
		PageMinHeightMM: PageMinHeightMM,
	}
	if view.Title == "" {
		view.Title = "CV"
	}

	educations := doc.Education.Items()
	if anyEducation(educations) {
		for _, e := range educations {
			heading := e.Institution
			if e.Degree != "" {
				heading += " - " + e.Degree
			}
			view.Education = append(view.Education, entryView{
				Heading:     headingIf(e.Institution != "" || e.Degree != "", heading),
				Date:        e.Date,
				Description: r.description(e.Description),
			})
		}
	}

	experiences := doc.Experience.Items()
	if anyExperience(experiences) {
		for _, e := range experiences {
			heading := e.Position
			if e.Company != "" {
				heading += " | " + e.Company
			}
			view.Experience = append(view.Experience, entryView{
				Heading:     headingIf(e.Company != "" || e.Position != "", heading),
				Date:        e.Date,
				Description: r.description(e.Description),
			})
		}
	}

	view.Skills = nonEmpty(doc.Skills.Items())
	view.Languages = nonEmpty(doc.Languages.Items())
	return view
}

func (r *Renderer) description(raw string) template.HTML {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	clean := r.sanitizer.Sanitize(raw)
	clean = strings.ReplaceAll(clean, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>"))
}

// photoURL 只放行图片 data URI 与 http(s) 链接，其余引用视为空。
func photoURL(ref string) template.URL {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return template.URL(ref)
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return template.URL(ref)
	default:
		return ""
	}
}

func headingIf(ok bool, heading string) string {
	if !ok {
		return ""
	}
	return heading
}

func anyEducation(entries []cv.EducationEntry) bool {
	for _, e := range entries {
		if e.Institution != "" || e.Degree != "" {
			return true
		}
	}
	return false
}

func anyExperience(entries []cv.ExperienceEntry) bool {
	for _, e := range entries {
		if e.Company != "" || e.Position != "" {
			return true
		}
	}
	return false
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
