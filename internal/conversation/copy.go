package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmartinel/turnosms/internal/schedule"
	"github.com/dmartinel/turnosms/internal/session"
)

// All user-facing copy lives here so handlers stay logic-only and the
// wording can be reviewed in one place.

const (
	msgMenu = "¿Qué querés hacer?\n1. Sacar un turno\n2. Ver mis turnos\n3. Cancelar un turno\n\nEscribí una opción o contame qué necesitás. En cualquier momento podés escribir \"inicio\" para empezar de nuevo."

	msgHelp = "Te puedo ayudar con:\n• Sacar un turno (ej: \"quiero turno mañana a las 15\")\n• Ver tus turnos (\"mis turnos\")\n• Cancelar un turno (\"cancelar\")\n\nEscribí \"inicio\" para empezar de nuevo."

	msgWelcomeBack = "¡Hola de nuevo, %s!"

	msgAskName = "¡Hola! Parece que es tu primera vez por acá. ¿Cómo te llamás?"

	msgNamePrompt = "No llegué a entender tu nombre. ¿Me lo repetís?"

	msgNameSaved = "¡Un gusto, %s!"

	msgApology = "Uy, algo salió mal de nuestro lado. Empecemos de nuevo: escribí \"inicio\" o contame qué necesitás."

	msgAskDate = "¿Para qué fecha querés el turno? Podés escribir \"mañana\", un día (\"el viernes\") o una fecha (15/04)."

	msgDateNotUnderstood = "No entendí la fecha. Probá con \"mañana\", \"el viernes\" o una fecha como 15/04."

	msgDateInPast = "Esa fecha ya pasó. Decime una fecha de hoy en adelante."

	msgDateTooFar = "Solo se pueden sacar turnos hasta 90 días para adelante. Probá con una fecha más cercana."

	msgTimeNotUnderstood = "No entendí el horario. Podés elegir un número de la lista o escribir una hora como \"15:30\"."

	msgTimeTooSoon = "Los turnos se sacan con al menos 1 hora de anticipación. Elegí otro horario."

	msgNoSlots = "%s no tiene horarios libres el %s. ¿Querés probar con otra fecha?"

	msgSlotTaken = "Justo se ocupó ese horario. Te paso los que quedan:"

	msgConfirmBooking = "Confirmame el turno:\n📅 %s\n🕐 %s hs\n👤 %s\n\n¿Está bien? (sí/no)"

	msgBooked = "¡Listo! Turno confirmado para el %s a las %s hs con %s. Te va a llegar un recordatorio antes. 🎉"

	msgBookingCancelled = "Ok, no reservé nada. Cuando quieras, escribime de nuevo."

	msgYesNo = "Respondeme \"sí\" para confirmar o \"no\" para cancelar."

	msgNoEmployees = "Por ahora no hay profesionales con agenda disponible. Probá de nuevo más tarde."

	msgNoAppointments = "No tenés turnos próximos. Si querés sacar uno, escribí \"turno\"."

	msgNothingToCancel = "No tenés turnos próximos para cancelar."

	msgConfirmCancel = "Vas a cancelar este turno:\n📅 %s a las %s hs con %s\n\n¿Confirmás? (sí/no)"

	msgCancelled = "Listo, cancelé el turno. ¡Gracias por avisar!"

	msgCancelKept = "Perfecto, el turno sigue en pie."

	msgUnknownDefault = "No te entendí. 🤔"
)

func msgRange(max int) string {
	return fmt.Sprintf("Elegí una opción del 1 al %d.", max)
}

func formatEmployeePrompt(employees []session.EmployeeRef) string {
	var b strings.Builder
	b.WriteString("¿Con quién querés el turno?\n")
	for i, e := range employees {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Name)
	}
	fmt.Fprintf(&b, "%d. Cualquiera", len(employees)+1)
	return b.String()
}

func formatSlotPrompt(employeeName, date string, slots []schedule.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Horarios libres de %s para el %s:\n", employeeName, date)
	for i, s := range slots {
		fmt.Fprintf(&b, "%d. %s hs\n", i+1, s.Start.Format("15:04"))
	}
	b.WriteString("Elegí un número o escribí otra hora.")
	return b.String()
}

func formatAppointmentList(header string, appts []session.AppointmentRef) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, a := range appts {
		fmt.Fprintf(&b, "%d. %s a las %s hs con %s\n", i+1, formatDayES(a.StartsAt), a.StartsAt.Format("15:04"), a.EmployeeName)
	}
	return strings.TrimRight(b.String(), "\n")
}

var weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// formatDayES renders "lunes 09/03" style dates for user copy.
func formatDayES(t time.Time) string {
	return fmt.Sprintf("%s %s", weekdaysES[int(t.Weekday())], t.Format("02/01"))
}
