package forecast

// Band is a PM2.5 concentration range with a fixed display colour.
// Upper is exclusive; the last band has no upper bound.
type Band struct {
	Label string
	Upper float64
	Color string
}

const (
	ColorGood          = "#00E400"
	ColorModerate      = "#FFFF00"
	ColorSensitive     = "#FF7E00"
	ColorUnhealthy     = "#FF0000"
	ColorVeryUnhealthy = "#8F3F97"
	ColorHazardous     = "#7E0023"
)

var bands = []Band{
	{Label: "Good", Upper: 50, Color: ColorGood},
	{Label: "Moderate", Upper: 100, Color: ColorModerate},
	{Label: "Unhealthy for Sensitive Groups", Upper: 150, Color: ColorSensitive},
	{Label: "Unhealthy", Upper: 200, Color: ColorUnhealthy},
	{Label: "Very Unhealthy", Upper: 300, Color: ColorVeryUnhealthy},
}

var hazardous = Band{Label: "Hazardous", Color: ColorHazardous}

// BandFor returns the first band whose upper bound is above v.
func BandFor(v float64) Band {
	for _, b := range bands {
		if v < b.Upper {
			return b
		}
	}
	return hazardous
}

// ColorFor returns the display colour for a concentration in µg/m³.
func ColorFor(v float64) string {
	return BandFor(v).Color
}

// Bands lists every severity band in ascending order, for legends.
func Bands() []Band {
	out := make([]Band, 0, len(bands)+1)
	out = append(out, bands...)
	return append(out, hazardous)
}
