// Package student describes the input record the form collects and how a
// predicted cluster is presented.
package student

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column names, as used by the encoders and the classifier's feature order.
const (
	JenisKelamin       = "jenis_kelamin"
	RasEtnis           = "ras_etnis"
	PendidikanOrangtua = "pendidikan_orangtua"
	MakanSiang         = "makan_siang"
	KursusPersiapan    = "kursus_persiapan"
	IPMatematika       = "ip_matematika"
	IPMembaca          = "ip_membaca"
	IPMenulis          = "ip_menulis"
)

// Field is one form input.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// CategoricalFields are listed in form order.
var CategoricalFields = []Field{
	{Name: JenisKelamin, Label: "Jenis Kelamin"},
	{Name: RasEtnis, Label: "Ras/Etnis"},
	{Name: PendidikanOrangtua, Label: "Pendidikan Orang Tua"},
	{Name: MakanSiang, Label: "Tipe Makan Siang"},
	{Name: KursusPersiapan, Label: "Kursus Persiapan"},
}

var GradeFields = []Field{
	{Name: IPMatematika, Label: "IP Matematika"},
	{Name: IPMembaca, Label: "IP Membaca"},
	{Name: IPMenulis, Label: "IP Menulis"},
}

// Columns returns every record column name, categoricals first.
func Columns() []string {
	names := make([]string, 0, len(CategoricalFields)+len(GradeFields))
	for _, f := range CategoricalFields {
		names = append(names, f.Name)
	}
	for _, f := range GradeFields {
		names = append(names, f.Name)
	}
	return names
}

func IsColumn(name string) bool {
	for _, column := range Columns() {
		if column == name {
			return true
		}
	}
	return false
}

func IsCategorical(name string) bool {
	for _, f := range CategoricalFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// DisplayName title-cases a category value for the dropdown, e.g.
// "bachelor's degree" becomes "Bachelor's Degree". The submitted value is
// always the raw category.
func DisplayName(value string) string {
	// a Caser is stateful, so each call gets its own
	return cases.Title(language.Indonesian).String(value)
}
