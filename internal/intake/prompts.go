package intake

// Step is a stage of the intake flow. Transitions are strictly forward.
type Step string

const (
	StepNickname         Step = "ask_nickname"
	StepIngameID         Step = "ask_ingame_id"
	StepKingdom          Step = "ask_kingdom"
	StepPower            Step = "ask_power"
	StepKP               Step = "ask_kp"
	StepDeaths           Step = "ask_deaths"
	StepScreenshot       Step = "ask_screenshot"
	StepSecondScreenshot Step = "ask_second_screenshot"
)

var prompts = map[string]map[Step]string{
	"es": {
		StepNickname:         "📛 ¿Cuál es tu nombre en el juego?",
		StepIngameID:         "🆔 ¿Cuál es tu ID de jugador?",
		StepKingdom:          "🏰 ¿En qué reino estás?",
		StepPower:            "⚡ ¿Cuánto poder tienes? (ej. 1.2b, 500m)",
		StepKP:               "🎯 ¿Cuántos puntos de kill tienes? (ej. 800m, 1.5b)",
		StepDeaths:           "💀 ¿Cuántas muertes tienes? (ej. 50k, 120000)",
		StepScreenshot:       "📸 Sube una captura de tu Poder/KP.",
		StepSecondScreenshot: "🪦 Sube una captura de tus Muertes.",
	},
	"en": {
		StepNickname:         "📛 What is your in-game nickname?",
		StepIngameID:         "🆔 What is your in-game ID?",
		StepKingdom:          "🏰 What kingdom are you in?",
		StepPower:            "⚡ How much Power do you have? (e.g. 1.2b, 500m)",
		StepKP:               "🎯 How many Kill Points do you have? (e.g. 800m, 1.5b)",
		StepDeaths:           "💀 How many Deaths do you have? (e.g. 50k, 120000)",
		StepScreenshot:       "📸 Upload your Power/KP screenshot.",
		StepSecondScreenshot: "🪦 Upload your Deaths screenshot.",
	},
}

var texts = map[string]map[string]string{
	"es": {
		"missing_image":   "📎 Necesito una imagen para continuar.",
		"confirm":         "✅ Gracias. Tu solicitud será enviada a los administradores.",
		"already_pending": "⏳ Ya tienes una solicitud pendiente de revisión.",
		"cancelled":       "🗑️ Tu solicitud fue cancelada. Puedes iniciar de nuevo cuando quieras.",
		"submit_failed":   "⚠️ No se pudo enviar la solicitud a los administradores.",
		"ticket_created":  "🎫 Abrí un canal privado para tu solicitud, sigamos ahí.",
	},
	"en": {
		"missing_image":   "📎 I need an image to continue.",
		"confirm":         "✅ Thank you. Your request will be sent to the admins.",
		"already_pending": "⏳ You already have a request awaiting review.",
		"cancelled":       "🗑️ Your request was cancelled. Start again whenever you like.",
		"submit_failed":   "⚠️ Could not send your request to the admins.",
		"ticket_created":  "🎫 I opened a private channel for your request, let's continue there.",
	},
}

func promptFor(lang string, step Step) string {
	if m, ok := prompts[lang]; ok {
		if p, ok := m[step]; ok {
			return p
		}
	}
	return prompts["en"][step]
}

func textFor(lang, key string) string {
	if m, ok := texts[lang]; ok {
		if t, ok := m[key]; ok {
			return t
		}
	}
	return texts["en"][key]
}
