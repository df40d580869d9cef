package weather

import (
	"fmt"
	"math"
)

// Conditions is the subset of a weather report that drives the mood text.
type Conditions struct {
	Code        int     // OpenWeatherMap condition id
	Temperature float64 // °C
	IsDaytime   bool
	CloudCover  int   // percent
	Now         int64 // unix seconds
	Sunrise     int64 // unix seconds
}

type Mood struct {
	Mood        string `json:"mood"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var fallbackMood = Mood{
	Mood:        "weather",
	Description: "It's... weather! Probably a great day",
	Icon:        "🌤️",
}

// Describe turns weather conditions into a short mood description.
func Describe(c Conditions) Mood {
	code, temp := c.Code, c.Temperature

	switch {
	case code >= 200 && code < 300:
		return Mood{"dramatic", "Lightning and thunder nearby - nature's light show", "⛈️"}

	case code >= 300 && code < 400:
		return Mood{"gentle", "Light drizzle - perfect for a peaceful walk with an umbrella", "🌦️"}

	case code >= 500 && code < 600:
		if temp < 0 {
			return Mood{"cozy", "Rain turning to snow - winter wonder outside your window", "🌨️"}
		}
		if temp < 10 {
			return Mood{"cozy", "Cool rain - great day for tea and a good book", "🌧️"}
		}
		return Mood{"cozy", "Warm rain - perfect for listening to the patter on the roof", "🌧️"}

	case code >= 600 && code < 700:
		return Mood{"magical", "Snowfall - everything is hushed and beautiful", "❄️"}

	case code >= 700 && code < 800:
		if c.IsDaytime {
			return Mood{"mysterious", "Misty air - like walking through clouds", "🌫️"}
		}
		return Mood{"mysterious", "Fog rolling in - mysteriously atmospheric", "🌫️"}

	case code == 800:
		if c.IsDaytime {
			if temp > 20 {
				return Mood{"perfect", fmt.Sprintf("Clear skies and %d° - ideal for being outside", Round(temp)), "☀️"}
			}
			return Mood{"crisp", fmt.Sprintf("Bright and clear - %d° for an energizing day", Round(temp)), "☀️"}
		}
		if c.Sunrise-c.Now < 3600 {
			return Mood{"dawn", "Clear skies just before sunrise - you could catch the dawn", "🌅"}
		}
		if temp < 5 {
			return Mood{"starry", "Crystal clear night - perfect for stargazing (bundle up!)", "✨"}
		}
		return Mood{"starry", "Clear night skies - perfect for stargazing", "✨"}

	case code > 800 && code < 810:
		if !c.IsDaytime {
			return Mood{"cloudy", "Cloudy night - cozy indoor weather", "☁️"}
		}
		if c.CloudCover > 70 {
			return Mood{"overcast", "Overcast but pleasant - comfortable weather for wandering", "☁️"}
		}
		return Mood{"partly-cloudy", "Partly cloudy - nice balance of sun and shade", "⛅"}
	}

	return fallbackMood
}

// Round rounds half up, so -2.5 becomes -2.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}
