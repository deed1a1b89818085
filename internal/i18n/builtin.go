package i18n

var builtin = map[string]map[string]string{
	"en-US": {
		"tv.weather.pelican_town":  "Tomorrow in Pelican Town:",
		"tv.weather.ginger_island": "Tomorrow on Ginger Island:",
	},
	"es-ES": {
		"tv.weather.pelican_town":  "Mañana en Pueblo Pelícano:",
		"tv.weather.ginger_island": "Mañana en la Isla Jengibre:",
	},
	"pt-BR": {
		"tv.weather.pelican_town": "Amanhã na Vila Pelicanos:",
	},
	"de-DE": {
		"tv.weather.pelican_town":  "Morgen in Pelikan-Stadt:",
		"tv.weather.ginger_island": "Morgen auf der Ingwerinsel:",
	},
}
