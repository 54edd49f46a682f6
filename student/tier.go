package student

type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierLow     Tier = "low"
	TierUnknown Tier = "unknown"
)

const (
	LabelTinggi  = "Tinggi"
	LabelSedang  = "Sedang"
	LabelRendah  = "Rendah"
	LabelUnknown = "Tidak Diketahui"
)

// Presentation is how a tier is rendered in the result panel. Colours live
// in the stylesheet, keyed by tier.
type Presentation struct {
	Icon    string `json:"icon"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// TierForLabel maps a cluster label to its tier. Labels other than Tinggi
// and Sedang fall through to the low tier.
func TierForLabel(label string) Tier {
	switch label {
	case LabelTinggi:
		return TierHigh
	case LabelSedang:
		return TierMedium
	default:
		return TierLow
	}
}

func (t Tier) Presentation() Presentation {
	switch t {
	case TierHigh:
		return Presentation{Icon: "🏆", Level: "success", Message: "Siswa ini menunjukkan potensi akademik yang sangat baik."}
	case TierMedium:
		return Presentation{Icon: "👍", Level: "info", Message: "Siswa ini memiliki performa akademik yang cukup baik."}
	case TierLow:
		return Presentation{Icon: "📚", Level: "warning", Message: "Siswa ini mungkin memerlukan perhatian atau bimbingan tambahan."}
	default:
		return Presentation{Icon: "❔", Level: "error", Message: "Klaster hasil prediksi tidak dikenal oleh model."}
	}
}
