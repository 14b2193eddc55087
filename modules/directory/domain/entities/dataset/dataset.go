package dataset

import "strings"

// Dataset is a governed dataset in the analytics platform. Code is the
// platform-side dataset identifier shown next to the name in summaries.
type Dataset struct {
	id   int64
	code string
	name string
}

func Hydrate(id int64, code, name string) Dataset {
	return Dataset{
		id:   id,
		code: strings.TrimSpace(code),
		name: strings.TrimSpace(name),
	}
}

func (d Dataset) ID() int64    { return d.id }
func (d Dataset) Code() string { return d.code }
func (d Dataset) Name() string { return d.name }
func (d Dataset) IsZero() bool { return d.id == 0 && d.code == "" }
