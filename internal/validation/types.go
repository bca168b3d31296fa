package validation

// CreateAppointmentRequest is the payload for POST /appointments.
// Only presence is checked here; entity rules (5-digit insuredId, supported
// countryISO, positive scheduleId) live on the entity so they run at every
// materialization, and a breach there is a 500-class failure, not a 400.
type CreateAppointmentRequest struct {
	InsuredID  string `json:"insuredId" validate:"required"`
	ScheduleID int    `json:"scheduleId" validate:"required"`
	CountryISO string `json:"countryISO" validate:"required"`
}
