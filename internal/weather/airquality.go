package weather

var (
	aqiLabels = [...]string{"", "Good", "Fair", "Moderate", "Poor", "Very Poor"}
	aqiColors = [...]string{"", "#00E400", "#FFFF00", "#FF7E00", "#FF0000", "#8F3F97"}
)

// AQILabel names an AQI category 1..5.
func AQILabel(aqi int) string {
	if aqi < 1 || aqi >= len(aqiLabels) {
		return "Unknown"
	}
	return aqiLabels[aqi]
}

// AQIColor is the gauge colour for an AQI category.
func AQIColor(aqi int) string {
	if aqi < 1 || aqi >= len(aqiColors) {
		return "#999"
	}
	return aqiColors[aqi]
}

// AQIGaugeRotation maps AQI 1..5 onto a -70..70 degree needle.
func AQIGaugeRotation(aqi int) float64 {
	r := float64(aqi-1)/4*140 - 70
	switch {
	case r < -70:
		return -70
	case r > 70:
		return 70
	}
	return r
}
