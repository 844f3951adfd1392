package lever

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-applypilot-automation/internal/models"
)

func TestMapFields(t *testing.T) {
	m := NewMapper()

	fields := m.MapFields(models.ApplicantProfile{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+1 555 0100",
		LinkedIn: "https://linkedin.com/in/janedoe",
		GitHub:   "https://github.com/janedoe",
	})

	//lever takes the full name in a single field
	assert.Equal(t, "Jane Doe", fields["name"])
	assert.Equal(t, "https://linkedin.com/in/janedoe", fields["urls[LinkedIn]"])
	assert.Equal(t, "https://github.com/janedoe", fields["urls[GitHub]"])

	_, hasLocation := fields["location"]
	assert.False(t, hasLocation)
}
