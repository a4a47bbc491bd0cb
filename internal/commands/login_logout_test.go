package commands_test

import (
	"testing"

	"taskdash/internal/commands"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

func TestLoginCommand_StoresToken(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Users["ana@example.com"] = "Secret1"
	app := newApp(t, svc, false)

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, testConfig(t), app,
		"--email", "ana@example.com", "--password", "Secret1")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if token, ok := app.Tokens.Get(); !ok || token != "token-ana@example.com" {
		t.Errorf("stored token=%q ok=%v", token, ok)
	}
}

func TestLoginCommand_Rejected(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Users["ana@example.com"] = "Secret1"
	app := newApp(t, svc, false)

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, testConfig(t), app,
		"--email", "ana@example.com", "--password", "wrong")
	if code != exitcode.AuthError || stderr != "error: auth error: invalid credentials\n" {
		t.Errorf("code=%d stderr=%q", code, stderr)
	}
	if app.LoggedIn() {
		t.Error("token stored after failed login")
	}
}

func TestLoginCommand_ValidationMakesNoCall(t *testing.T) {
	svc := testutil.NewFakeService()
	_, stderr, code := runCommand(t, &commands.LoginCmd{}, testConfig(t), newApp(t, svc, false),
		"--email", "not-an-email")

	want := "error: email: Invalid email address\nerror: password: Password is required\n"
	if code != exitcode.UserError || stderr != want {
		t.Errorf("code=%d stderr=%q", code, stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("calls=%v", svc.Calls)
	}
}

func TestSignupCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	app := newApp(t, svc, false)

	_, stderr, code := runCommand(t, &commands.SignupCmd{}, testConfig(t), app,
		"--email", "new@example.com", "--password", "password")
	if code != exitcode.UserError || stderr != "error: password: Password should contain lowercase, uppercase and number\n" {
		t.Errorf("weak password: code=%d stderr=%q", code, stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("calls=%v", svc.Calls)
	}

	_, stderr, code = runCommand(t, &commands.SignupCmd{}, testConfig(t), app,
		"--email", "new@example.com", "--password", "Passw0rd")
	if code != exitcode.Success {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	if svc.Users["new@example.com"] != "Passw0rd" || !app.LoggedIn() {
		t.Errorf("users=%v loggedIn=%v", svc.Users, app.LoggedIn())
	}
}

func TestSignupCommand_Conflict(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Users["ana@example.com"] = "Secret1"
	svc.RegisterErr = &service.RequestError{Status: 409, Message: "email already registered"}

	_, stderr, code := runCommand(t, &commands.SignupCmd{}, testConfig(t), newApp(t, svc, false),
		"--email", "ana@example.com", "--password", "Secret12")
	if code != exitcode.BackendError || stderr != "error: backend error: 409 email already registered\n" {
		t.Errorf("code=%d stderr=%q", code, stderr)
	}
}

func TestLogoutCommand(t *testing.T) {
	app := newApp(t, testutil.NewFakeService(), true)

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, testConfig(t), app)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("code=%d stdout=%q", code, stdout)
	}
	if app.LoggedIn() {
		t.Error("token still stored")
	}

	stdout, _, code = runCommand(t, &commands.LogoutCmd{}, testConfig(t), app)
	if code != exitcode.Success || stdout != "not logged in\n" {
		t.Errorf("second logout: code=%d stdout=%q", code, stdout)
	}
}
