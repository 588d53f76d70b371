package i18n

// messages is the single localization table: message id → language → text.
// Adapters and handlers must not carry their own string literals.
var messages = map[string]map[string]string{
	"refusal.domain": {
		LangEN: "I can only help with questions about local services, news, stadiums and tourist places. Try for example: \"health services in Rabat\", \"stadiums in Casablanca\" or \"tourist places near the medina\".",
		LangFR: "Je ne peux répondre qu'aux questions sur les services locaux, les actualités, les stades et les lieux touristiques. Essayez par exemple : « services de santé à Rabat », « stades à Casablanca » ou « lieux touristiques près de la médina ».",
		LangAR: "يمكنني فقط المساعدة في الأسئلة المتعلقة بالخدمات المحلية والأخبار والملاعب والأماكن السياحية. جرّب مثلاً: \"خدمات صحية في الرباط\" أو \"ملاعب في الدار البيضاء\" أو \"أماكن سياحية قرب المدينة القديمة\".",
	},
	"error.try_later": {
		LangEN: "The assistant is receiving too many requests right now. Please try again in a few minutes.",
		LangFR: "L'assistant reçoit trop de demandes en ce moment. Veuillez réessayer dans quelques minutes.",
		LangAR: "يتلقى المساعد عددًا كبيرًا من الطلبات حاليًا. يرجى المحاولة مرة أخرى بعد بضع دقائق.",
	},
	"error.empty_response": {
		LangEN: "I could not produce an answer from the available information. Please try rephrasing your question.",
		LangFR: "Je n'ai pas pu formuler de réponse à partir des informations disponibles. Veuillez reformuler votre question.",
		LangAR: "لم أتمكن من صياغة إجابة من المعلومات المتوفرة. يرجى إعادة صياغة سؤالك.",
	},
	"directions.unavailable": {
		LangEN: "Directions are not available at the moment.",
		LangFR: "Les itinéraires ne sont pas disponibles pour le moment.",
		LangAR: "الاتجاهات غير متوفرة في الوقت الحالي.",
	},
	"directions.usage": {
		LangEN: "To get directions, ask for example: \"from Rabat to Casablanca\".",
		LangFR: "Pour obtenir un itinéraire, demandez par exemple : « de Rabat à Casablanca ».",
		LangAR: "للحصول على الاتجاهات، اسأل مثلاً: \"من الرباط إلى الدار البيضاء\".",
	},
	"directions.route": {
		LangEN: "Route from %s to %s: %.1f km, about %d minutes by car.",
		LangFR: "Itinéraire de %s à %s : %.1f km, environ %d minutes en voiture.",
		LangAR: "الطريق من %s إلى %s: %.1f كم، حوالي %d دقيقة بالسيارة.",
	},
	"search.unavailable": {
		LangEN: "Web search is not available at the moment.",
		LangFR: "La recherche web n'est pas disponible pour le moment.",
		LangAR: "البحث على الويب غير متوفر في الوقت الحالي.",
	},
	"weather.report": {
		LangEN: "Weather in %s: %s, %.0f°C (today %.0f to %.0f°C), wind %.0f km/h.",
		LangFR: "Météo à %s : %s, %.0f°C (aujourd'hui de %.0f à %.0f°C), vent %.0f km/h.",
		LangAR: "الطقس في %s: %s، %.0f°م (اليوم من %.0f إلى %.0f°م)، الرياح %.0f كم/س.",
	},
	"weather.cond.clear": {
		LangEN: "clear sky",
		LangFR: "ciel dégagé",
		LangAR: "سماء صافية",
	},
	"weather.cond.clouds": {
		LangEN: "cloudy",
		LangFR: "nuageux",
		LangAR: "غائم",
	},
	"weather.cond.fog": {
		LangEN: "fog",
		LangFR: "brouillard",
		LangAR: "ضباب",
	},
	"weather.cond.rain": {
		LangEN: "rain",
		LangFR: "pluie",
		LangAR: "مطر",
	},
	"weather.cond.snow": {
		LangEN: "snow",
		LangFR: "neige",
		LangAR: "ثلج",
	},
	"weather.cond.storm": {
		LangEN: "thunderstorm",
		LangFR: "orage",
		LangAR: "عاصفة رعدية",
	},
	"context.services": {
		LangEN: "Services",
		LangFR: "Services",
		LangAR: "الخدمات",
	},
	"context.places": {
		LangEN: "Tourist places",
		LangFR: "Lieux touristiques",
		LangAR: "الأماكن السياحية",
	},
	"context.stadiums": {
		LangEN: "Stadiums",
		LangFR: "Stades",
		LangAR: "الملاعب",
	},
	"context.news": {
		LangEN: "News",
		LangFR: "Actualités",
		LangAR: "الأخبار",
	},
}
