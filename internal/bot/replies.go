package bot

// Fixed Spanish surface strings. The KPI reply bodies live in the
// report package; these cover greetings, commands and the fallback.
const (
	helpText = "👋 Hola, ¿cómo estás?\n\n" +
		"Soy MAT (Maintenance Agent Tool). Puedo ayudarte con KPIs:\n" +
		"• MTTR • MTBF • Backlog • Cumplimiento PM • Costos • Top downtime • Estados.\n\n" +
		"EJEMPLOS RÁPIDOS\n" +
		"• mttr este mes\n" +
		"• top downtime últimos 30 días\n" +
		"• costos últimos 60 días\n" +
		"• cumplimiento pm agosto\n" +
		"• ¿cuántas órdenes abiertas tiene Andres?\n" +
		"• ¿cuántas órdenes cerradas tiene Sebastian en septiembre?\n\n" +
		"REPORTES AUTOMÁTICOS\n" +
		"• Comenzar: /subscribe\n" +
		"• Detener: /unsubscribe\n" +
		"• Hora diaria: /setreport 07:00"

	farewellText = "¡Gracias! Me alegra ayudarte. Nos vemos mañana 👋"

	fallbackText = "Lo siento, no puedo ayudarte con esa solicitud. Por ahora solo puedo apoyar con: " +
		"MTTR, MTBF, Backlog, Cumplimiento PM, Costos, Top downtime, Estados y órdenes por técnico.\n\n" +
		"Ejemplos:\n• MTTR este mes\n• MTBF este mes\n• Costos septiembre\n• Cumplimiento PM agosto\n" +
		"• ¿Cuántas órdenes cerradas tiene Sebastian en septiembre?"

	replyBadTimeFormat    = "⚠️ Formato de hora inválido. Usa HH:MM (ej. 07:00)."
	replyUnparseableTime  = "⚠️ No pude interpretar esa hora. Usa HH:MM (ej. 07:00)."
	replyReportTimeSetFmt = "⏰ Hora de reporte establecida en %s (mes en curso)."
	replySubscribedFmt    = "🔔 Suscripción activada. Enviaré el reporte diario (mes en curso) a la hora configurada (%s)."
	replyUnsubscribed     = "🔕 Suscripción cancelada. Ya no enviaré reportes diarios."
)
