package model

// TariffBand maps an inclusive range of two-digit chapters to a duty rate
type TariffBand struct {
	Section      string  `json:"section,omitempty"`
	ChapterStart int     `json:"chapter_start"`
	ChapterEnd   int     `json:"chapter_end"`
	RatePercent  float64 `json:"duty_rate_percent"`
	Description  string  `json:"description,omitempty"`
}

// Contains reports whether the chapter falls inside the band
func (b TariffBand) Contains(chapter int) bool {
	return b.ChapterStart <= chapter && chapter <= b.ChapterEnd
}

// TariffTable is the ordered tariff book, read-only for a run
type TariffTable []TariffBand
