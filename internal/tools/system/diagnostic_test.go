package system

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	toolexec "github.com/techtime/deskaide/internal/tools/exec"
)

type fakeRunner struct {
	result  toolexec.ExecResult
	err     error
	calls   []string
	results []toolexec.ExecResult // optional per-call overrides, by call index
}

func (f *fakeRunner) RunCommand(_ context.Context, command string, _ string, _ map[string]string, _ string, _ time.Duration) (toolexec.ExecResult, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, command)
	if idx < len(f.results) {
		return f.results[idx], f.err
	}
	return f.result, f.err
}

func decodeResult(t *testing.T, content string) DiagnosticResult {
	t.Helper()
	var result DiagnosticResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return result
}

func TestGatewayTool_NilManager(t *testing.T) {
	tool := NewGatewayTool(nil)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for nil manager")
	}
}

func TestGatewayTool_ReportsFunctionName(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0, Stdout: "10.0.0.1\n"}}
	tool := NewGatewayTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Function != "ping_gateway" {
		t.Errorf("Function = %q", decoded.Function)
	}
}

func TestWifiStatusTool_ParsesEnabled(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0, Stdout: "Wi-Fi Power (en0): On"}}
	tool := NewWifiStatusTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected success, got error %q", decoded.Error)
	}
	if decoded.Data["enabled"] != true {
		t.Errorf("enabled = %v, want true", decoded.Data["enabled"])
	}
}

func TestWifiToggleTool_RequiresEnableField(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0}}
	tool := NewWifiToggleTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"enable": true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected success, got error %q", decoded.Error)
	}
	if len(runner.calls) != 1 {
		t.Errorf("expected 1 command invocation, got %d", len(runner.calls))
	}
}

func TestDNSFlushTool_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 1, Stderr: "permission denied"}}
	tool := NewDNSFlushTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected failure on non-zero exit")
	}
	if len(decoded.Suggestions) == 0 {
		t.Error("expected suggestions on failure")
	}
}

func TestResolveHostnameTool_RequiresHostname(t *testing.T) {
	tool := NewResolveHostnameTool(nil)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"hostname": ""}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected failure for empty hostname")
	}
}

func TestResolveHostnameTool_Localhost(t *testing.T) {
	tool := NewResolveHostnameTool(nil)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"hostname": "localhost"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected localhost to resolve, got error %q", decoded.Error)
	}
}

func TestDHCPRenewTool_RefusesProtectedAdapter(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0}}
	tool := NewDHCPRenewTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"adapter": "/etc"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected refusal for protected adapter path")
	}
	if len(runner.calls) != 0 {
		t.Error("command should not have been run")
	}
}

func TestIPConfigTool_Success(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0, Stdout: "inet 192.168.1.10"}}
	tool := NewIPConfigTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected success, got error %q", decoded.Error)
	}
}

func TestAdapterListTool_Success(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0, Stdout: "eth0 UP"}}
	tool := NewAdapterListTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected success, got error %q", decoded.Error)
	}
}

func TestAdapterResetTool_RequiresAdapter(t *testing.T) {
	tool := NewAdapterResetTool(&fakeRunner{})
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"adapter": ""}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected failure for empty adapter")
	}
}

func TestAdapterResetTool_RefusesProtectedName(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0}}
	tool := NewAdapterResetTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"adapter": "init"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected refusal for protected name")
	}
	if len(runner.calls) != 0 {
		t.Error("command should not have been run")
	}
}

func TestAdapterResetTool_DownThenUp(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0}}
	tool := NewAdapterResetTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"adapter": "eth0"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected success, got error %q", decoded.Error)
	}
	if len(runner.calls) != 3 {
		t.Errorf("expected down+up+verify commands, got %d calls", len(runner.calls))
	}
}

func TestConnectivityTool_AllUnreachable(t *testing.T) {
	origHosts := connectivityProbeHosts
	connectivityProbeHosts = []string{"127.0.0.1:1"}
	defer func() { connectivityProbeHosts = origHosts }()

	tool := NewConnectivityTool(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := tool.Execute(ctx, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected failure when no hosts reachable")
	}
}

func TestKillProcessTool_RefusesProtectedName(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0}}
	tool := NewKillProcessTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name": "init"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected refusal for protected process name")
	}
	if len(runner.calls) != 0 {
		t.Error("command should not have been run")
	}
}

func TestKillProcessTool_RequiresNameOrPID(t *testing.T) {
	tool := NewKillProcessTool(&fakeRunner{})
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected failure when neither name nor pid given")
	}
}

func TestKillProcessTool_Success(t *testing.T) {
	runner := &fakeRunner{
		result:  toolexec.ExecResult{ExitCode: 0},
		results: []toolexec.ExecResult{{ExitCode: 0}, {ExitCode: 1}},
	}
	tool := NewKillProcessTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name": "stuck-app"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected success, got error %q", decoded.Error)
	}
}

func TestCleanTempFilesTool_DefaultsAge(t *testing.T) {
	runner := &fakeRunner{result: toolexec.ExecResult{ExitCode: 0}}
	tool := NewCleanTempFilesTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if !decoded.Success {
		t.Fatalf("expected success, got error %q", decoded.Error)
	}
	if decoded.Data["older_than_days"].(float64) != 7 {
		t.Errorf("older_than_days = %v, want 7", decoded.Data["older_than_days"])
	}
}

func TestCleanTempFilesTool_RunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	tool := NewCleanTempFilesTool(runner)
	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeResult(t, res.Content)
	if decoded.Success {
		t.Error("expected failure when runner errors")
	}
}

func TestProtectedNameAndPath(t *testing.T) {
	if !isProtectedName("Init") {
		t.Error("expected 'Init' to match protected name case-insensitively")
	}
	if isProtectedName("my-app") {
		t.Error("did not expect 'my-app' to be protected")
	}
	if !isProtectedPath("/etc") {
		t.Error("expected /etc to be protected")
	}
	if isProtectedPath("/home/user/tmp") {
		t.Error("did not expect /home/user/tmp to be protected")
	}
}

func TestToolNamesMatchSchema(t *testing.T) {
	tools := []interface {
		Name() string
		Schema() json.RawMessage
	}{
		NewGatewayTool(nil),
		NewWifiStatusTool(nil),
		NewWifiToggleTool(nil),
		NewDNSFlushTool(nil),
		NewResolveHostnameTool(nil),
		NewDHCPRenewTool(nil),
		NewIPConfigTool(nil),
		NewAdapterListTool(nil),
		NewAdapterResetTool(nil),
		NewConnectivityTool(nil),
		NewKillProcessTool(nil),
		NewCleanTempFilesTool(nil),
	}
	wantNames := map[string]bool{
		"ping_gateway": true, "check_wifi_status": true, "toggle_wifi": true,
		"flush_dns": true, "resolve_hostname": true, "release_renew_dhcp": true,
		"get_ip_config": true, "list_network_adapters": true, "reset_adapter": true,
		"check_internet_connectivity": true, "kill_process": true, "clean_temp_files": true,
	}
	for _, tool := range tools {
		if !wantNames[tool.Name()] {
			t.Errorf("unexpected tool name %q", tool.Name())
		}
		delete(wantNames, tool.Name())
		var parsed map[string]interface{}
		if err := json.Unmarshal(tool.Schema(), &parsed); err != nil {
			t.Errorf("%s: schema not valid JSON: %v", tool.Name(), err)
		}
	}
	if len(wantNames) != 0 {
		t.Errorf("missing tools: %v", wantNames)
	}
}
