package constant

// Conversation steps, in strict forward order. A step only ever advances to
// the next one; validation failures re-prompt the same step.
const (
	StepValidateDocument      = "VALIDATE_DOCUMENT"
	StepSelectCity            = "SELECT_CITY"
	StepSelectSpecialty       = "SELECT_SPECIALTY"
	StepSelectAppointmentType = "SELECT_APPOINTMENT_TYPE"
	StepConfirmAppointment    = "CONFIRM_APPOINTMENT"
	StepCompleted             = "COMPLETED"
)

// Session statuses.
const (
	SessionStatusActive    = "ACTIVE"
	SessionStatusCompleted = "COMPLETED"
	SessionStatusAbandoned = "ABANDONED"
)

// Message directions.
const (
	MessageDirectionIncoming = "INCOMING"
	MessageDirectionOutgoing = "OUTGOING"
)

// Appointment statuses. Only REQUESTED and CONFIRMED constrain availability.
const (
	AppointmentStatusRequested = "REQUESTED"
	AppointmentStatusConfirmed = "CONFIRMED"
	AppointmentStatusCancelled = "CANCELLED"
)

// Chat data keys. The map is append-only scratch memory for the session.
const (
	ChatDataDocumentNumber     = "document_number"
	ChatDataPatientID          = "patient_id"
	ChatDataCity               = "city"
	ChatDataSpecialty          = "specialty"
	ChatDataAppointmentType    = "appointment_type"
	ChatDataProfessionalID     = "professional_id"
	ChatDataOfferedCities      = "offered_cities"
	ChatDataOfferedSpecialties = "offered_specialties"
	ChatDataOfferedTypes       = "offered_types"
	ChatDataOfferedSlots       = "offered_slots"
)

// In-process bus topic for post-commit confirmation events.
const TopicAppointmentConfirmed = "appointment_confirmed"

// Appointment types offered at SELECT_APPOINTMENT_TYPE.
var AppointmentTypes = []string{"First visit", "Follow-up"}

// Bot prompts.
const (
	PromptGreeting = "Hello! I can help you book a medical appointment. To get started, please enter your document number."
	PromptCity     = "Thanks! In which city would you like to be seen?"
	PromptSlots    = "These are the next available slots. Reply with the number of the one you prefer."

	PromptRetryDocument  = "That doesn't look like a valid document number. Please enter only digits (6 to 12)."
	PromptUnknownPatient = "We couldn't find a patient with that document number. Please check it and try again."
	PromptRetrySelection = "Please reply with one of the numbers from the list."
	PromptNoSlots        = "There are no available slots at the moment. Please try again later."
	PromptSlotTaken      = "Sorry, that slot was just taken. Here are the updated options:"
	PromptCompleted      = "Your appointment is booked! You'll receive a confirmation shortly."
	PromptSessionClosed  = "This conversation has ended. Please start a new session to book another appointment."
)
