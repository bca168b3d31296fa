package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/intake"
	"github.com/medibook/appointment-saga/internal/validation"
)

// IntakeService accepts a booking and returns the async acknowledgment.
type IntakeService interface {
	Submit(ctx context.Context, insuredID string, scheduleID int, countryISO string) (*intake.Receipt, error)
}

// AppointmentReader serves the secondary lookup by insuredId.
type AppointmentReader interface {
	QueryByInsuredID(ctx context.Context, insuredID string) ([]appointment.Appointment, error)
}

// HandlerConfig groups dependencies for the appointment routes.
type HandlerConfig struct {
	Intake       IntakeService
	Appointments AppointmentReader
}

// RegisterAppointmentRoutes registers the synchronous boundary of the saga.
func RegisterAppointmentRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.POST("/appointments", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateAppointmentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		receipt, err := cfg.Intake.Submit(ctx, req.InsuredID, req.ScheduleID, req.CountryISO)
		if err != nil {
			// entity validation and infrastructure failures both surface as
			// 500 with the message, the original boundary's contract
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusAccepted, receipt)
	})

	r.GET("/appointments/:insuredId", func(c *gin.Context) {
		ctx := c.Request.Context()

		insuredID := c.Param("insuredId")
		if len(insuredID) != 5 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "InsuredId must be a 5-digit string",
			})
			return
		}

		items, err := cfg.Appointments.QueryByInsuredID(ctx, insuredID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": err.Error(),
			})
			return
		}
		if items == nil {
			items = []appointment.Appointment{}
		}

		c.JSON(http.StatusOK, gin.H{
			"count": len(items),
			"items": items,
		})
	})
}
