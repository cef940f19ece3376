package cv

import (
	"fmt"
	"sync"
)

// Document 是一个会话内唯一的 CVDocument，由持有者显式传递。
// 所有修改都经过这里的方法，读方通过 Snapshot 获得一致的副本。
type Document struct {
	mu    sync.RWMutex
	state Snapshot
}

// NewDocument 创建空白文档。
func NewDocument() *Document {
	return &Document{state: Blank()}
}

// Snapshot 在读锁下返回当前文档的深拷贝。
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.clone()
}

// Revision 返回当前修订号，每次修改递增。
func (d *Document) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.Revision
}

func (d *Document) mutate(fn func(s *Snapshot) error) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(&d.state); err != nil {
		return d.state.Revision, err
	}
	d.state.Revision++
	return d.state.Revision, nil
}

// SetPersonal 设置个人信息字段。
func (d *Document) SetPersonal(field, value string) (uint64, error) {
	return d.mutate(func(s *Snapshot) error {
		return s.Personal.set(field, value)
	})
}

// Append 在列表末尾追加空白元素，返回新元素下标。
func (d *Document) Append(list List) (int, uint64, error) {
	var index int
	rev, err := d.mutate(func(s *Snapshot) error {
		switch list {
		case ListEducation:
			index = s.Education.Append()
		case ListExperience:
			index = s.Experience.Append()
		case ListSkills:
			index = s.Skills.Append()
		case ListLanguages:
			index = s.Languages.Append()
		default:
			return fmt.Errorf("%w: %q", ErrUnknownList, list)
		}
		return nil
	})
	return index, rev, err
}

// Update 修改列表元素的字段；skills 与 languages 是纯字符串，忽略 field。
func (d *Document) Update(list List, index int, field, value string) (uint64, error) {
	return d.mutate(func(s *Snapshot) error {
		switch list {
		case ListEducation:
			return s.Education.Update(index, func(e EducationEntry) (EducationEntry, error) {
				return e.with(field, value)
			})
		case ListExperience:
			return s.Experience.Update(index, func(e ExperienceEntry) (ExperienceEntry, error) {
				return e.with(field, value)
			})
		case ListSkills:
			return s.Skills.Update(index, replaceString(value))
		case ListLanguages:
			return s.Languages.Update(index, replaceString(value))
		default:
			return fmt.Errorf("%w: %q", ErrUnknownList, list)
		}
	})
}

// Remove 删除列表元素；删除唯一元素时替换为空白元素。
func (d *Document) Remove(list List, index int) (uint64, error) {
	return d.mutate(func(s *Snapshot) error {
		switch list {
		case ListEducation:
			return s.Education.Remove(index)
		case ListExperience:
			return s.Experience.Remove(index)
		case ListSkills:
			return s.Skills.Remove(index)
		case ListLanguages:
			return s.Languages.Remove(index)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownList, list)
		}
	})
}

// Replace 用导入的内容整体替换文档，保留并递增修订号。
func (d *Document) Replace(next Snapshot) uint64 {
	rev, _ := d.mutate(func(s *Snapshot) error {
		rev := s.Revision
		*s = next.clone()
		s.Revision = rev
		return nil
	})
	return rev
}

func replaceString(value string) func(string) (string, error) {
	return func(string) (string, error) {
		return value, nil
	}
}
