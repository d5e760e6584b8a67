package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func sampleEvent() ReservationEvent {
    return ReservationEvent{
        EventID:       "b0c1",
        Type:          EventReservationConfirmed,
        ReservationID: 42,
        CourtID:       7,
        VenueID:       3,
        UserID:        11,
        Date:          "2025-01-01",
        StartTime:     "10:00",
        EndTime:       "11:00",
        PriceCents:    1500,
        OccurredAt:    "2025-01-01T09:00:00Z",
    }
}

func TestFormatEvent(t *testing.T) {
    line := FormatEvent(sampleEvent())
    assert.Equal(t,
        "[2025-01-01T09:00:00Z] Reservation confirmed | reservation_id=42 | user_id=11 | venue_id=3 | court_id=7 | date=2025-01-01 | time=10:00-11:00 | price=1500 cents | event_id=b0c1\n",
        line)

    ev := sampleEvent()
    ev.Type = EventReservationCancelled
    assert.Contains(t, FormatEvent(ev), "Reservation cancelled")
}

func TestBookingLog_Append(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")
    sink := &BookingLog{Dir: dir}

    body, err := json.Marshal(sampleEvent())
    require.NoError(t, err)
    require.NoError(t, sink.Append(body))
    require.NoError(t, sink.Append(body))

    data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
    require.NoError(t, err)
    assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestBookingLog_RejectsMalformed(t *testing.T) {
    sink := &BookingLog{Dir: t.TempDir()}
    assert.Error(t, sink.Append([]byte("{not json")))
    assert.Error(t, sink.Append([]byte(`{"type":""}`)))
}
