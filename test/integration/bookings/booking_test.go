package bookings

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"bookline/pkg/model"
	"bookline/test/integration/testutil"
)

// The suite drives one full booking lifecycle against a running API
// instance. Set TEST_SERVER_URL (and run cmd/migrate first) to enable it.

func TestBookingLifecycle(t *testing.T) {
	client := testutil.RequireServer(t)
	client.WaitForHealthy(t, 30*time.Second)

	// Unique actors per run so reruns do not collide with leftover data.
	runID := time.Now().UnixNano()
	adminUserID := runID
	clientUserID := runID + 1

	var org model.Organization
	resp := client.POST(t, "/api/v1/organizations", map[string]any{
		"name":     fmt.Sprintf("Integration Salon %d", runID),
		"timezone": "UTC",
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	resp.DecodeData(t, &org)
	if org.ID == "" || org.CalendarToken == "" {
		t.Fatalf("expected organization with id and calendar token, got %+v", org)
	}

	resp = client.POST(t, "/api/v1/organizations/"+org.ID+"/admins", map[string]any{
		"user_id": adminUserID,
	})
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	var svc model.Service
	resp = client.POST(t, "/api/v1/services", map[string]any{
		"organization_id":  org.ID,
		"name":             "Consultation",
		"duration_minutes": 60,
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	resp.DecodeData(t, &svc)

	startTime := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Hour)
	bookingBody := map[string]any{
		"organization_id": org.ID,
		"service_id":      svc.ID,
		"client_user_id":  clientUserID,
		"start_time":      startTime.Format(time.RFC3339),
		"client_name":     "Integration Client",
		"client_phone":    "+998901234567",
	}

	t.Run("booking rejected without subscription", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/bookings", bookingBody)
		testutil.AssertStatusCode(t, resp, http.StatusPaymentRequired)
		if code := testutil.ErrorCode(t, resp); code != "NOT_ENTITLED" {
			t.Errorf("expected NOT_ENTITLED, got %q", code)
		}
	})

	resp = client.POST(t, "/api/v1/organizations/"+org.ID+"/subscription/activate", map[string]any{
		"plan": model.PlanBasic,
		"days": 30,
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var booking model.Booking
	t.Run("booking created once entitled", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/bookings", bookingBody)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		resp.DecodeData(t, &booking)

		if booking.Status != model.BookingPending {
			t.Errorf("expected PENDING booking, got %q", booking.Status)
		}
		if !booking.EndTime.Equal(startTime.Add(60 * time.Minute)) {
			t.Errorf("expected end time derived from service duration, got %v", booking.EndTime)
		}
	})

	t.Run("same slot rejected as conflict", func(t *testing.T) {
		second := map[string]any{}
		for k, v := range bookingBody {
			second[k] = v
		}
		second["client_user_id"] = clientUserID + 1

		resp := client.POST(t, "/api/v1/bookings", second)
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
		if code := testutil.ErrorCode(t, resp); code != "CONFLICT" {
			t.Errorf("expected CONFLICT, got %q", code)
		}
	})

	t.Run("admin confirms pending booking", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/bookings/id/"+booking.ID+"/confirm", map[string]any{
			"admin_user_id": adminUserID,
		})
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var confirmed model.Booking
		resp.DecodeData(t, &confirmed)
		if confirmed.Status != model.BookingConfirmed {
			t.Errorf("expected CONFIRMED booking, got %q", confirmed.Status)
		}
	})

	t.Run("pending list empty after confirmation", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/organizations/%s/bookings/pending?admin_user_id=%d", org.ID, adminUserID)
		resp := client.GET(t, path)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var pending []model.Booking
		resp.DecodeData(t, &pending)
		if len(pending) != 0 {
			t.Errorf("expected no pending bookings, got %d", len(pending))
		}
	})

	t.Run("calendar feed includes confirmed booking", func(t *testing.T) {
		resp := client.GET(t, "/calendar/"+org.CalendarToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertContains(t, resp, "BEGIN:VCALENDAR")
		testutil.AssertContains(t, resp, "booking-"+booking.ID+"@bookline")
	})

	t.Run("client cancels own booking", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/bookings/id/"+booking.ID+"/cancel", map[string]any{
			"client_user_id": clientUserID,
		})
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var canceled model.Booking
		resp.DecodeData(t, &canceled)
		if canceled.Status != model.BookingCanceled {
			t.Errorf("expected CANCELED booking, got %q", canceled.Status)
		}
	})

	t.Run("canceled slot can be rebooked", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/bookings", bookingBody)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
	})
}
