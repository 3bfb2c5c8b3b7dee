package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAdminEndpointsRejectRegularUsers(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.createUser(t, "cook@example.com")
	cookie := ta.login(t, "cook@example.com")

	for _, path := range []string{"/api/admin/users", "/api/admin/profiles"} {
		response := ta.doJSON(t, http.MethodGet, path, cookie, nil)
		response.Body.Close()
		if response.StatusCode != http.StatusForbidden {
			t.Fatalf("GET %s expected status 403, got %d", path, response.StatusCode)
		}
	}

	anonymous := ta.doJSON(t, http.MethodGet, "/api/admin/users", "", nil)
	defer anonymous.Body.Close()
	if anonymous.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without session, got %d", anonymous.StatusCode)
	}
}

func TestAdminManagesUsers(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	admin := ta.createAdmin(t, "admin@example.com")
	cookie := ta.login(t, "admin@example.com")

	create := ta.doJSON(t, http.MethodPost, "/api/admin/users", cookie, map[string]any{
		"email":    "helper@example.com",
		"password": "helperpass123",
		"role":     "admin",
	})
	defer create.Body.Close()
	if create.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d", create.StatusCode)
	}
	var helper adminUserResponse
	decodeJSON(t, create.Body, &helper)
	if helper.Role != "admin" || helper.IsLocked {
		t.Fatalf("unexpected created user: %+v", helper)
	}

	badRole := ta.doJSON(t, http.MethodPost, "/api/admin/users", cookie, map[string]any{
		"email":    "root@example.com",
		"password": "rootpass1234",
		"role":     "superuser",
	})
	defer badRole.Body.Close()
	if badRole.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown role, got %d", badRole.StatusCode)
	}

	target := ta.createUser(t, "cook@example.com")
	update := ta.doJSON(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", target.ID), cookie, map[string]any{
		"experience_level": "intermediate",
		"last_name":        "Jonaitis",
	})
	defer update.Body.Close()
	if update.StatusCode != http.StatusOK {
		t.Fatalf("expected update status 200, got %d", update.StatusCode)
	}
	var updated adminUserResponse
	decodeJSON(t, update.Body, &updated)
	if updated.ExperienceLevel != "intermediate" || updated.LastName == nil || *updated.LastName != "Jonaitis" {
		t.Fatalf("unexpected updated user: %+v", updated)
	}

	lock := ta.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/lock", target.ID), cookie, map[string]any{"locked": true})
	defer lock.Body.Close()
	if lock.StatusCode != http.StatusOK {
		t.Fatalf("expected lock status 200, got %d", lock.StatusCode)
	}
	var locked adminUserResponse
	decodeJSON(t, lock.Body, &locked)
	if !locked.IsLocked {
		t.Fatal("expected user to be locked")
	}

	login := ta.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]any{
		"email":    "cook@example.com",
		"password": testPassword,
	})
	defer login.Body.Close()
	if login.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected locked user login status 401, got %d", login.StatusCode)
	}

	selfLock := ta.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/lock", admin.ID), cookie, map[string]any{"locked": true})
	defer selfLock.Body.Close()
	if selfLock.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 locking own account, got %d", selfLock.StatusCode)
	}

	missing := ta.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/lock", target.ID), cookie, map[string]any{})
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 without locked flag, got %d", missing.StatusCode)
	}

	unknown := ta.doJSON(t, http.MethodPost, "/api/admin/users/9999/lock", cookie, map[string]any{"locked": true})
	defer unknown.Body.Close()
	if unknown.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown user, got %d", unknown.StatusCode)
	}

	list := ta.doJSON(t, http.MethodGet, "/api/admin/users", cookie, nil)
	defer list.Body.Close()
	if list.StatusCode != http.StatusOK {
		t.Fatalf("expected list status 200, got %d", list.StatusCode)
	}
	body := readBody(t, list.Body)
	for _, email := range []string{"admin@example.com", "helper@example.com", "cook@example.com"} {
		if !strings.Contains(body, email) {
			t.Fatalf("expected %s in user list, got %s", email, body)
		}
	}
	if strings.Contains(body, "password") {
		t.Fatalf("expected user list without password data, got %s", body)
	}
}

func TestAdminManagesProfiles(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.createAdmin(t, "admin@example.com")
	cookie := ta.login(t, "admin@example.com")

	create := ta.doJSON(t, http.MethodPost, "/api/admin/profiles", cookie, map[string]any{
		"name":     "Miso",
		"type":     "Condiment",
		"min_days": 90,
		"max_days": 365,
		"temp_min": 60,
		"temp_max": 80,
	})
	defer create.Body.Close()
	if create.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d", create.StatusCode)
	}
	var miso profileResponse
	decodeJSON(t, create.Body, &miso)
	if miso.Type != "condiment" || !miso.IsActive {
		t.Fatalf("unexpected created profile: %+v", miso)
	}

	invalid := ta.doJSON(t, http.MethodPost, "/api/admin/profiles", cookie, map[string]any{
		"name":     "Backwards",
		"type":     "vegetable",
		"min_days": 10,
		"max_days": 5,
		"temp_min": 80,
		"temp_max": 60,
	})
	defer invalid.Body.Close()
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for inverted ranges, got %d", invalid.StatusCode)
	}
	fields := readFieldErrors(t, invalid.Body)
	if fields["max_days"] == "" || fields["temp_max"] == "" {
		t.Fatalf("expected max_days and temp_max errors, got %v", fields)
	}

	copyPath := fmt.Sprintf("/api/admin/profiles/%d/copy", miso.ID)
	copied := ta.doJSON(t, http.MethodPost, copyPath, cookie, map[string]any{"new_name": "Quick miso"})
	defer copied.Body.Close()
	if copied.StatusCode != http.StatusCreated {
		t.Fatalf("expected copy status 201, got %d", copied.StatusCode)
	}
	var quick profileResponse
	decodeJSON(t, copied.Body, &quick)
	if quick.ID == miso.ID || quick.MaxDays != 365 || quick.Type != "condiment" {
		t.Fatalf("unexpected copied profile: %+v", quick)
	}

	unnamed := ta.doJSON(t, http.MethodPost, copyPath, cookie, map[string]any{"name": "Old field"})
	defer unnamed.Body.Close()
	if unnamed.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 without new_name, got %d", unnamed.StatusCode)
	}
	if fields := readFieldErrors(t, unnamed.Body); fields["new_name"] == "" {
		t.Fatalf("expected new_name field error, got %v", fields)
	}

	duplicate := ta.doJSON(t, http.MethodPost, copyPath, cookie, map[string]any{"new_name": "Kimchi"})
	defer duplicate.Body.Close()
	if duplicate.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate profile name, got %d", duplicate.StatusCode)
	}

	deactivate := ta.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/profiles/%d/status", miso.ID), cookie, map[string]any{"is_active": false})
	defer deactivate.Body.Close()
	if deactivate.StatusCode != http.StatusOK {
		t.Fatalf("expected status change 200, got %d", deactivate.StatusCode)
	}

	public := ta.doJSON(t, http.MethodGet, "/api/fermentation/profiles", "", nil)
	defer public.Body.Close()
	var active []profileResponse
	decodeJSON(t, public.Body, &active)
	for _, profile := range active {
		if profile.ID == miso.ID {
			t.Fatal("expected deactivated profile hidden from public list")
		}
	}
	if len(active) != 8 {
		t.Fatalf("expected 7 seeded profiles plus the copy, got %d", len(active))
	}

	all := ta.doJSON(t, http.MethodGet, "/api/admin/profiles", cookie, nil)
	defer all.Body.Close()
	var every []profileResponse
	decodeJSON(t, all.Body, &every)
	if len(every) != 9 {
		t.Fatalf("expected admin list to include inactive profiles, got %d", len(every))
	}

	start := ta.doJSON(t, http.MethodPost, "/api/fermentation", cookie, map[string]any{
		"profile_id": miso.ID,
		"name":       "Barley miso",
	})
	defer start.Body.Close()
	if start.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 starting from an inactive profile, got %d", start.StatusCode)
	}
}
