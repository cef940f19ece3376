package cv

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField 表示字段名不存在。
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownList 表示列表名不存在。
	ErrUnknownList = errors.New("unknown list")
)

// List 标识文档中的一个有序列表。
type List string

const (
	ListEducation  List = "education"
	ListExperience List = "experience"
	ListSkills     List = "skills"
	ListLanguages  List = "languages"
)

// Lists 按展示顺序列出所有列表。
var Lists = []List{ListEducation, ListExperience, ListSkills, ListLanguages}

// ParseList 校验并转换列表名。
func ParseList(name string) (List, error) {
	for _, l := range Lists {
		if string(l) == name {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownList, name)
}

// PersonalInfo 是文档中唯一的个人信息块。
type PersonalInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	// Photo 为不透明的图片引用（通常是 data URI），可以为空。
	Photo string `json:"photoUrl"`
}

// EducationEntry 描述一段教育经历。
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ExperienceEntry 描述一段工作经历。
type ExperienceEntry struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Snapshot 是 CVDocument 在某一时刻的不可变副本。
type Snapshot struct {
	Personal   PersonalInfo             `json:"personalInfo"`
	Education  Entries[EducationEntry]  `json:"education"`
	Experience Entries[ExperienceEntry] `json:"experience"`
	Skills     Entries[string]          `json:"skills"`
	Languages  Entries[string]          `json:"languages"`
	Revision   uint64                   `json:"revision"`
}

// Blank 返回会话开始时的空白文档：每个列表一个空白元素。
func Blank() Snapshot {
	return Snapshot{
		Education:  NewEntries[EducationEntry](),
		Experience: NewEntries[ExperienceEntry](),
		Skills:     NewEntries[string](),
		Languages:  NewEntries[string](),
	}
}

// SubjectName 返回导出文件命名所用的姓名。
func (s Snapshot) SubjectName() string {
	return s.Personal.Name
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Personal:   s.Personal,
		Education:  EntriesOf(s.Education.Items()...),
		Experience: EntriesOf(s.Experience.Items()...),
		Skills:     EntriesOf(s.Skills.Items()...),
		Languages:  EntriesOf(s.Languages.Items()...),
		Revision:   s.Revision,
	}
}

func (p *PersonalInfo) set(field, value string) error {
	switch field {
	case "name":
		p.Name = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "address":
		p.Address = value
	case "photo", "photoUrl":
		p.Photo = value
	default:
		return fmt.Errorf("%w: personalInfo.%s", ErrUnknownField, field)
	}
	return nil
}

func (e EducationEntry) with(field, value string) (EducationEntry, error) {
	switch field {
	case "institution":
		e.Institution = value
	case "degree":
		e.Degree = value
	case "date":
		e.Date = value
	case "description":
		e.Description = value
	default:
		return e, fmt.Errorf("%w: education.%s", ErrUnknownField, field)
	}
	return e, nil
}

func (e ExperienceEntry) with(field, value string) (ExperienceEntry, error) {
	switch field {
	case "company":
		e.Company = value
	case "position":
		e.Position = value
	case "date":
		e.Date = value
	case "description":
		e.Description = value
	default:
		return e, fmt.Errorf("%w: experience.%s", ErrUnknownField, field)
	}
	return e, nil
}
