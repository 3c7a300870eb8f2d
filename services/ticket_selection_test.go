package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
)

func candidate(ticketID uuid.UUID, academyID *uuid.UUID, general bool) models.UserTicket {
	return models.UserTicket{
		ID:       uuid.New(),
		TicketID: ticketID,
		Ticket:   models.Ticket{ID: ticketID, AcademyID: academyID, IsGeneral: general},
	}
}

func TestSelectUserTicket(t *testing.T) {
	academyID := uuid.New()
	otherAcademyID := uuid.New()
	linkedID := uuid.New()
	academyTicketID := uuid.New()
	generalTicketID := uuid.New()
	strayTicketID := uuid.New()

	linked := map[uuid.UUID]bool{linkedID: true}

	classLinked := candidate(linkedID, &academyID, false)
	academySpecific := candidate(academyTicketID, &academyID, false)
	general := candidate(generalTicketID, nil, true)
	stray := candidate(strayTicketID, &otherAcademyID, false)

	tests := []struct {
		name    string
		tickets []models.UserTicket
		want    uuid.UUID
	}{
		{
			name:    "class-linked wins over everything",
			tickets: []models.UserTicket{general, academySpecific, classLinked},
			want:    classLinked.ID,
		},
		{
			name:    "academy-specific wins without a class link",
			tickets: []models.UserTicket{general, academySpecific},
			want:    academySpecific.ID,
		},
		{
			name:    "general is the last preference",
			tickets: []models.UserTicket{stray, general},
			want:    general.ID,
		},
		{
			name:    "falls back to first candidate",
			tickets: []models.UserTicket{stray},
			want:    stray.ID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectUserTicket(tt.tickets, linked, academyID)
			if got == nil {
				t.Fatal("SelectUserTicket returned nil")
			}
			if got.ID != tt.want {
				t.Errorf("selected ticket %s, want %s", got.ID, tt.want)
			}
		})
	}

	if got := SelectUserTicket(nil, linked, academyID); got != nil {
		t.Errorf("empty candidate list should select nothing, got %s", got.ID)
	}
}
