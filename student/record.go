package student

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Record is one row of student attributes as entered in the form.
type Record struct {
	JenisKelamin       string          `json:"jenis_kelamin"`
	RasEtnis           string          `json:"ras_etnis"`
	PendidikanOrangtua string          `json:"pendidikan_orangtua"`
	MakanSiang         string          `json:"makan_siang"`
	KursusPersiapan    string          `json:"kursus_persiapan"`
	IPMatematika       decimal.Decimal `json:"ip_matematika"`
	IPMembaca          decimal.Decimal `json:"ip_membaca"`
	IPMenulis          decimal.Decimal `json:"ip_menulis"`
}

// Categorical returns the categorical columns by name.
func (r Record) Categorical() map[string]string {
	return map[string]string{
		JenisKelamin:       r.JenisKelamin,
		RasEtnis:           r.RasEtnis,
		PendidikanOrangtua: r.PendidikanOrangtua,
		MakanSiang:         r.MakanSiang,
		KursusPersiapan:    r.KursusPersiapan,
	}
}

func (r Record) Grades() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		IPMatematika: r.IPMatematika,
		IPMembaca:    r.IPMembaca,
		IPMenulis:    r.IPMenulis,
	}
}

// Raw is the unencoded input mapping shown back to the user.
func (r Record) Raw() map[string]any {
	raw := make(map[string]any, len(CategoricalFields)+len(GradeFields))
	for name, value := range r.Categorical() {
		raw[name] = value
	}
	for name, value := range r.Grades() {
		raw[name] = value.InexactFloat64()
	}
	return raw
}

// Set assigns a column from its form value.
func (r *Record) Set(name, value string) error {
	if field := r.categorical(name); field != nil {
		*field = value
		return nil
	}
	switch name {
	case IPMatematika, IPMembaca, IPMenulis:
		d, err := ParseGrade(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		switch name {
		case IPMatematika:
			r.IPMatematika = d
		case IPMembaca:
			r.IPMembaca = d
		default:
			r.IPMenulis = d
		}
		return nil
	default:
		return fmt.Errorf("unknown column %q", name)
	}
}

// categorical returns the field backing a categorical column, or nil.
func (r *Record) categorical(name string) *string {
	switch name {
	case JenisKelamin:
		return &r.JenisKelamin
	case RasEtnis:
		return &r.RasEtnis
	case PendidikanOrangtua:
		return &r.PendidikanOrangtua
	case MakanSiang:
		return &r.MakanSiang
	case KursusPersiapan:
		return &r.KursusPersiapan
	default:
		return nil
	}
}

// Validate checks what the form widgets enforce: every categorical is
// chosen and every grade point is within bounds.
func (r Record) Validate() error {
	for _, f := range CategoricalFields {
		if r.Categorical()[f.Name] == "" {
			return fmt.Errorf("%s: %w", f.Name, ErrMissing)
		}
	}
	grades := r.Grades()
	for _, f := range GradeFields {
		if err := CheckGrade(grades[f.Name]); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

// DefaultRecord picks the first class of every categorical and the default
// grade point, the state the form opens with.
func DefaultRecord(classes func(column string) []string) Record {
	var r Record
	for _, f := range CategoricalFields {
		if values := classes(f.Name); len(values) > 0 {
			*r.categorical(f.Name) = values[0]
		}
	}
	r.IPMatematika = DefaultGrade
	r.IPMembaca = DefaultGrade
	r.IPMenulis = DefaultGrade
	return r
}
