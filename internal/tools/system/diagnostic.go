package system

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"runtime"
	"strings"
	"time"

	"github.com/techtime/deskaide/internal/agent"
	toolexec "github.com/techtime/deskaide/internal/tools/exec"
)

// DiagnosticResult is the uniform shape every network/system diagnostic
// tool returns, whether it succeeded or not. Tools never return a Go
// error for an expected failure (command exit, unsupported platform,
// protected target) — they fold it into this struct instead.
type DiagnosticResult struct {
	Success     bool                   `json:"success"`
	Function    string                 `json:"function"`
	Platform    string                 `json:"platform"`
	Data        map[string]interface{} `json:"data,omitempty"`
	RawOutput   string                 `json:"raw_output,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
}

func newResult(function string) DiagnosticResult {
	return DiagnosticResult{Function: function, Platform: runtime.GOOS}
}

func (r DiagnosticResult) ok(data map[string]interface{}, raw string) DiagnosticResult {
	r.Success = true
	r.Data = data
	r.RawOutput = raw
	return r
}

func (r DiagnosticResult) fail(err string, suggestions ...string) DiagnosticResult {
	r.Success = false
	r.Error = err
	r.Suggestions = suggestions
	return r
}

func (r DiagnosticResult) unsupportedPlatform() DiagnosticResult {
	return r.fail(fmt.Sprintf("unsupported platform: %s", r.Platform))
}

func toolPayload(result DiagnosticResult) *agent.ToolResult {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err))
	}
	return &agent.ToolResult{Content: string(payload), IsError: !result.Success}
}

// protectedNames and protectedPathPrefixes are the static deny-list
// mutating tools consult before touching anything. This is not a
// sandbox: it blocks a fixed set of names/paths known to be load
// bearing for the host, nothing more.
var protectedNames = map[string]bool{
	"init": true, "systemd": true, "launchd": true, "kernel_task": true,
	"wininit.exe": true, "csrss.exe": true, "winlogon.exe": true,
	"services.exe": true, "lsass.exe": true, "smss.exe": true,
	"explorer.exe": true, "finder": true, "windowserver": true,
	"svchost.exe": true, "systemd-journald": true, "launchservicesd": true,
}

var protectedPathPrefixes = []string{
	"/", "/bin", "/sbin", "/usr", "/etc", "/boot", "/sys", "/proc", "/lib",
	"/system", "/library", "/private/var/db",
	"c:/windows", "c:/program files", "c:/program files (x86)",
}

func isProtectedName(name string) bool {
	return protectedNames[strings.ToLower(strings.TrimSpace(name))]
}

func isProtectedPath(path string) bool {
	clean := strings.ToLower(strings.TrimSpace(path))
	clean = strings.ReplaceAll(clean, "\\", "/")
	for _, prefix := range protectedPathPrefixes {
		if clean == prefix || clean == strings.TrimSuffix(prefix, "/") {
			return true
		}
	}
	return false
}

// ConfigureProtectedPolicy extends the built-in protected-name/path
// deny-lists with deployment-supplied entries. Called once at startup
// from the loaded tools configuration; never removes a built-in entry.
func ConfigureProtectedPolicy(extraNames []string, extraPathPrefixes []string) {
	for _, name := range extraNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			protectedNames[name] = true
		}
	}
	for _, prefix := range extraPathPrefixes {
		prefix = strings.ToLower(strings.TrimSpace(prefix))
		prefix = strings.ReplaceAll(prefix, "\\", "/")
		if prefix != "" {
			protectedPathPrefixes = append(protectedPathPrefixes, prefix)
		}
	}
}

// runner is the subset of *toolexec.Manager the diagnostic tools need;
// narrowed to ease testing with a fake.
type runner interface {
	RunCommand(ctx context.Context, command string, cwd string, env map[string]string, input string, timeout time.Duration) (toolexec.ExecResult, error)
}

const defaultDiagnosticTimeout = 15 * time.Second

func runShell(ctx context.Context, r runner, command string) (toolexec.ExecResult, error) {
	return r.RunCommand(ctx, command, "", nil, "", defaultDiagnosticTimeout)
}

// --- ping_gateway ------------------------------------------------------

// GatewayTool pings the default gateway to check layer-3 reachability.
type GatewayTool struct{ manager runner }

func NewGatewayTool(manager runner) *GatewayTool { return &GatewayTool{manager: manager} }

func (t *GatewayTool) Name() string { return "ping_gateway" }

func (t *GatewayTool) Description() string {
	return "Ping the default gateway to check local network reachability."
}

func (t *GatewayTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	})
}

func (t *GatewayTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}

	gateway, err := defaultGateway(ctx, t.manager)
	if err != nil {
		return toolPayload(result.fail(err.Error(), "Check that a network adapter is active.")), nil
	}

	var command string
	switch runtime.GOOS {
	case "windows":
		command = fmt.Sprintf("ping -n 3 -w 1000 %s", gateway)
	case "darwin":
		command = fmt.Sprintf("ping -c 3 -t 2 %s", gateway)
	case "linux":
		command = fmt.Sprintf("ping -c 3 -W 2 %s", gateway)
	default:
		return toolPayload(result.unsupportedPlatform()), nil
	}

	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	if res.ExitCode != 0 {
		return toolPayload(result.fail("gateway unreachable",
			"Check the cable/Wi-Fi connection.",
			"Restart the router if the problem persists.")), nil
	}
	return toolPayload(result.ok(map[string]interface{}{"gateway": gateway}, res.Stdout)), nil
}

// defaultGateway asks the OS routing table for the default gateway.
func defaultGateway(ctx context.Context, m runner) (string, error) {
	var command string
	switch runtime.GOOS {
	case "windows":
		command = "(Get-NetRoute -DestinationPrefix '0.0.0.0/0').NextHop"
	case "darwin":
		command = "route -n get default | awk '/gateway/{print $2}'"
	case "linux":
		command = "ip route show default | awk '/default/{print $3; exit}'"
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	res, err := runShell(ctx, m, command)
	if err != nil {
		return "", err
	}
	gw := strings.TrimSpace(strings.Split(res.Stdout, "\n")[0])
	if gw == "" {
		return "", fmt.Errorf("no default gateway found")
	}
	return gw, nil
}

// --- check_wifi_status / toggle_wifi ------------------------------------

type WifiStatusTool struct{ manager runner }

func NewWifiStatusTool(manager runner) *WifiStatusTool { return &WifiStatusTool{manager: manager} }

func (t *WifiStatusTool) Name() string { return "check_wifi_status" }

func (t *WifiStatusTool) Description() string {
	return "Report whether the Wi-Fi radio is on and which network, if any, is associated."
}

func (t *WifiStatusTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{"type": "object", "properties": map[string]interface{}{}})
}

func (t *WifiStatusTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}

	command, ok := wifiStatusCommand()
	if !ok {
		return toolPayload(result.unsupportedPlatform()), nil
	}
	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	enabled := !strings.Contains(strings.ToLower(res.Stdout), "off")
	return toolPayload(result.ok(map[string]interface{}{"enabled": enabled}, res.Stdout)), nil
}

func wifiStatusCommand() (string, bool) {
	switch runtime.GOOS {
	case "darwin":
		return "networksetup -getairportpower en0 && networksetup -getairportnetwork en0", true
	case "linux":
		return "nmcli radio wifi; nmcli -t -f active,ssid dev wifi | grep '^yes'", true
	case "windows":
		return "netsh wlan show interfaces", true
	default:
		return "", false
	}
}

// wifiEnabled re-reads Wi-Fi radio state, used by toggle_wifi to verify
// a mutation actually took effect rather than trusting the exit code.
func wifiEnabled(ctx context.Context, m runner) (bool, error) {
	command, ok := wifiStatusCommand()
	if !ok {
		return false, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	res, err := runShell(ctx, m, command)
	if err != nil {
		return false, err
	}
	return !strings.Contains(strings.ToLower(res.Stdout), "off"), nil
}

type WifiToggleTool struct{ manager runner }

func NewWifiToggleTool(manager runner) *WifiToggleTool { return &WifiToggleTool{manager: manager} }

func (t *WifiToggleTool) Name() string { return "toggle_wifi" }

func (t *WifiToggleTool) Description() string {
	return "Turn the Wi-Fi radio on or off."
}

func (t *WifiToggleTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"enable": map[string]interface{}{
				"type":        "boolean",
				"description": "true to turn Wi-Fi on, false to turn it off.",
			},
		},
		"required": []string{"enable"},
	})
}

func (t *WifiToggleTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}
	var input struct {
		Enable bool `json:"enable"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolPayload(result.fail(fmt.Sprintf("invalid parameters: %v", err))), nil
	}

	state := "off"
	if input.Enable {
		state = "on"
	}

	var command string
	switch runtime.GOOS {
	case "darwin":
		command = fmt.Sprintf("networksetup -setairportpower en0 %s", state)
	case "linux":
		command = fmt.Sprintf("nmcli radio wifi %s", state)
	case "windows":
		adapterState := "disabled"
		if input.Enable {
			adapterState = "enabled"
		}
		command = fmt.Sprintf("netsh interface set interface \"Wi-Fi\" admin=%s", adapterState)
	default:
		return toolPayload(result.unsupportedPlatform()), nil
	}

	if _, err := runShell(ctx, t.manager, command); err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}

	time.Sleep(1 * time.Second)

	enabled, verifyErr := wifiEnabled(ctx, t.manager)
	if verifyErr == nil && enabled != input.Enable {
		return toolPayload(result.fail("Wi-Fi state did not change after toggling",
			"Try toggling again, or check the adapter from system settings.")), nil
	}

	return toolPayload(result.ok(map[string]interface{}{"enabled": input.Enable}, "")), nil
}

// --- flush_dns / resolve_hostname ---------------------------------------

type DNSFlushTool struct{ manager runner }

func NewDNSFlushTool(manager runner) *DNSFlushTool { return &DNSFlushTool{manager: manager} }

func (t *DNSFlushTool) Name() string { return "flush_dns" }

func (t *DNSFlushTool) Description() string {
	return "Flush the local DNS resolver cache."
}

func (t *DNSFlushTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{"type": "object", "properties": map[string]interface{}{}})
}

func (t *DNSFlushTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}

	var command string
	switch runtime.GOOS {
	case "darwin":
		command = "dscacheutil -flushcache; killall -HUP mDNSResponder"
	case "linux":
		command = "resolvectl flush-caches || systemd-resolve --flush-caches"
	case "windows":
		command = "ipconfig /flushdns"
	default:
		return toolPayload(result.unsupportedPlatform()), nil
	}

	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	if res.ExitCode != 0 {
		return toolPayload(result.fail("flush command returned a non-zero exit code", "Try running the diagnostic assistant with elevated privileges.")), nil
	}
	return toolPayload(result.ok(nil, res.Stdout)), nil
}

type ResolveHostnameTool struct{ manager runner }

func NewResolveHostnameTool(manager runner) *ResolveHostnameTool {
	return &ResolveHostnameTool{manager: manager}
}

func (t *ResolveHostnameTool) Name() string { return "resolve_hostname" }

func (t *ResolveHostnameTool) Description() string {
	return "Resolve a hostname to its IP addresses to check DNS health."
}

func (t *ResolveHostnameTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"hostname": map[string]interface{}{
				"type":        "string",
				"description": "Hostname to resolve.",
			},
		},
		"required": []string{"hostname"},
	})
}

func (t *ResolveHostnameTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	var input struct {
		Hostname string `json:"hostname"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolPayload(result.fail(fmt.Sprintf("invalid parameters: %v", err))), nil
	}
	hostname := strings.TrimSpace(input.Hostname)
	if hostname == "" {
		return toolPayload(result.fail("hostname is required")), nil
	}

	resolver := net.Resolver{}
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	addrs, err := resolver.LookupHost(lookupCtx, hostname)
	if err != nil {
		return toolPayload(result.fail(err.Error(),
			"Verify the hostname is spelled correctly.",
			"Try flushing the DNS cache.")), nil
	}
	return toolPayload(result.ok(map[string]interface{}{
		"hostname":  hostname,
		"addresses": addrs,
	}, strings.Join(addrs, "\n"))), nil
}

// --- release_renew_dhcp / get_ip_config ---------------------------------

type DHCPRenewTool struct{ manager runner }

func NewDHCPRenewTool(manager runner) *DHCPRenewTool { return &DHCPRenewTool{manager: manager} }

func (t *DHCPRenewTool) Name() string { return "release_renew_dhcp" }

func (t *DHCPRenewTool) Description() string {
	return "Release and renew the DHCP lease on the primary network adapter."
}

func (t *DHCPRenewTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"adapter": map[string]interface{}{
				"type":        "string",
				"description": "Adapter name; defaults to the primary interface.",
			},
		},
	})
}

func (t *DHCPRenewTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}
	var input struct {
		Adapter string `json:"adapter"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolPayload(result.fail(fmt.Sprintf("invalid parameters: %v", err))), nil
	}

	adapter := strings.TrimSpace(input.Adapter)
	if adapter != "" && isProtectedPath(adapter) {
		return toolPayload(result.fail("refusing to operate on a protected adapter name")), nil
	}

	var command string
	switch runtime.GOOS {
	case "darwin":
		iface := adapter
		if iface == "" {
			iface = "en0"
		}
		command = fmt.Sprintf("sudo ipconfig set %s DHCP", iface)
	case "linux":
		if adapter != "" {
			command = fmt.Sprintf("dhclient -r %s && dhclient %s", adapter, adapter)
		} else {
			command = "dhclient -r && dhclient"
		}
	case "windows":
		command = "ipconfig /release && ipconfig /renew"
	default:
		return toolPayload(result.unsupportedPlatform()), nil
	}

	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	if res.ExitCode != 0 {
		return toolPayload(result.fail("DHCP renew command failed",
			"Retry with elevated privileges.",
			"Reconnect the adapter manually and try again.")), nil
	}

	time.Sleep(1 * time.Second)
	if verify, verifyErr := runShell(ctx, t.manager, ipConfigCommand()); verifyErr == nil {
		if !hasAssignedAddress(verify.Stdout) {
			return toolPayload(result.fail("no IP address assigned after DHCP renew",
				"Check that the adapter is physically connected.")), nil
		}
	}

	return toolPayload(result.ok(nil, res.Stdout)), nil
}

// hasAssignedAddress does a loose scan for an IPv4-looking address in
// ip/ifconfig/ipconfig output, enough to tell "got a lease" from "did not."
func hasAssignedAddress(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "inet ") || strings.Contains(lower, "ipv4") {
			if !strings.Contains(lower, "0.0.0.0") {
				return true
			}
		}
	}
	return false
}

type IPConfigTool struct{ manager runner }

func NewIPConfigTool(manager runner) *IPConfigTool { return &IPConfigTool{manager: manager} }

func (t *IPConfigTool) Name() string { return "get_ip_config" }

func (t *IPConfigTool) Description() string {
	return "Report the current IP configuration (address, mask, gateway, DNS)."
}

func (t *IPConfigTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{"type": "object", "properties": map[string]interface{}{}})
}

func (t *IPConfigTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}

	command := ipConfigCommand()
	if command == "" {
		return toolPayload(result.unsupportedPlatform()), nil
	}

	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	return toolPayload(result.ok(nil, res.Stdout)), nil
}

func ipConfigCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "ifconfig en0; echo '---'; scutil --dns | head -20"
	case "linux":
		return "ip addr show; echo '---'; resolvectl status 2>/dev/null || cat /etc/resolv.conf"
	case "windows":
		return "ipconfig /all"
	default:
		return ""
	}
}

// --- list_network_adapters / reset_adapter -------------------------------

type AdapterListTool struct{ manager runner }

func NewAdapterListTool(manager runner) *AdapterListTool { return &AdapterListTool{manager: manager} }

func (t *AdapterListTool) Name() string { return "list_network_adapters" }

func (t *AdapterListTool) Description() string {
	return "List network adapters and their link state."
}

func (t *AdapterListTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{"type": "object", "properties": map[string]interface{}{}})
}

func (t *AdapterListTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}

	var command string
	switch runtime.GOOS {
	case "darwin":
		command = "networksetup -listallhardwareports"
	case "linux":
		command = "ip -brief link show"
	case "windows":
		command = "powershell -Command \"Get-NetAdapter | Format-Table -AutoSize\""
	default:
		return toolPayload(result.unsupportedPlatform()), nil
	}

	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	return toolPayload(result.ok(nil, res.Stdout)), nil
}

type AdapterResetTool struct{ manager runner }

func NewAdapterResetTool(manager runner) *AdapterResetTool {
	return &AdapterResetTool{manager: manager}
}

func (t *AdapterResetTool) Name() string { return "reset_adapter" }

func (t *AdapterResetTool) Description() string {
	return "Disable and re-enable a network adapter."
}

func (t *AdapterResetTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"adapter": map[string]interface{}{
				"type":        "string",
				"description": "Adapter name to reset.",
			},
		},
		"required": []string{"adapter"},
	})
}

func (t *AdapterResetTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}
	var input struct {
		Adapter string `json:"adapter"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolPayload(result.fail(fmt.Sprintf("invalid parameters: %v", err))), nil
	}
	adapter := strings.TrimSpace(input.Adapter)
	if adapter == "" {
		return toolPayload(result.fail("adapter is required")), nil
	}
	if isProtectedPath(adapter) || isProtectedName(adapter) {
		return toolPayload(result.fail("refusing to reset a protected adapter")), nil
	}

	var downCmd, upCmd, verifyCmd string
	switch runtime.GOOS {
	case "darwin":
		downCmd = fmt.Sprintf("ifconfig %s down", adapter)
		upCmd = fmt.Sprintf("ifconfig %s up", adapter)
		verifyCmd = fmt.Sprintf("ifconfig %s", adapter)
	case "linux":
		downCmd = fmt.Sprintf("ip link set %s down", adapter)
		upCmd = fmt.Sprintf("ip link set %s up", adapter)
		verifyCmd = fmt.Sprintf("ip link show %s", adapter)
	case "windows":
		downCmd = fmt.Sprintf("powershell -Command \"Disable-NetAdapter -Name '%s' -Confirm:$false\"", adapter)
		upCmd = fmt.Sprintf("powershell -Command \"Enable-NetAdapter -Name '%s' -Confirm:$false\"", adapter)
		verifyCmd = fmt.Sprintf("powershell -Command \"(Get-NetAdapter -Name '%s').Status\"", adapter)
	default:
		return toolPayload(result.unsupportedPlatform()), nil
	}

	if _, err := runShell(ctx, t.manager, downCmd); err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	time.Sleep(2 * time.Second)
	res, err := runShell(ctx, t.manager, upCmd)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	if res.ExitCode != 0 {
		return toolPayload(result.fail("adapter reset failed to bring the interface back up",
			"Re-enable the adapter manually from network settings.")), nil
	}

	time.Sleep(1 * time.Second)
	verify, verifyErr := runShell(ctx, t.manager, verifyCmd)
	if verifyErr == nil {
		state := strings.ToLower(verify.Stdout)
		if strings.Contains(state, "down") && !strings.Contains(state, "up") {
			return toolPayload(result.fail("adapter did not come back up after reset",
				"Re-enable the adapter manually from network settings.")), nil
		}
	}

	return toolPayload(result.ok(map[string]interface{}{"adapter": adapter}, res.Stdout)), nil
}

// --- check_internet_connectivity ----------------------------------------

type ConnectivityTool struct{ manager runner }

func NewConnectivityTool(manager runner) *ConnectivityTool {
	return &ConnectivityTool{manager: manager}
}

func (t *ConnectivityTool) Name() string { return "check_internet_connectivity" }

func (t *ConnectivityTool) Description() string {
	return "Check outbound internet reachability by probing well-known hosts."
}

func (t *ConnectivityTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{"type": "object", "properties": map[string]interface{}{}})
}

var connectivityProbeHosts = []string{"1.1.1.1:443", "8.8.8.8:443"}

func (t *ConnectivityTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())

	reachable := []string{}
	unreachable := []string{}
	dialer := net.Dialer{Timeout: 3 * time.Second}
	for _, host := range connectivityProbeHosts {
		conn, err := dialer.DialContext(ctx, "tcp", host)
		if err != nil {
			unreachable = append(unreachable, host)
			continue
		}
		_ = conn.Close()
		reachable = append(reachable, host)
	}

	if len(reachable) == 0 {
		return toolPayload(result.fail("no internet connectivity detected",
			"Check the gateway and DHCP lease.",
			"Confirm the ISP modem/router is online.")), nil
	}
	return toolPayload(result.ok(map[string]interface{}{
		"reachable":   reachable,
		"unreachable": unreachable,
	}, strings.Join(reachable, ", "))), nil
}

// --- kill_process / clean_temp_files -------------------------------------

type KillProcessTool struct{ manager runner }

func NewKillProcessTool(manager runner) *KillProcessTool {
	return &KillProcessTool{manager: manager}
}

func (t *KillProcessTool) Name() string { return "kill_process" }

func (t *KillProcessTool) Description() string {
	return "Terminate a process by name or PID."
}

func (t *KillProcessTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Process name to terminate.",
			},
			"pid": map[string]interface{}{
				"type":        "integer",
				"description": "Process id to terminate.",
			},
		},
	})
}

func (t *KillProcessTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}
	var input struct {
		Name string `json:"name"`
		PID  int    `json:"pid"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolPayload(result.fail(fmt.Sprintf("invalid parameters: %v", err))), nil
	}
	name := strings.TrimSpace(input.Name)
	if name == "" && input.PID == 0 {
		return toolPayload(result.fail("name or pid is required")), nil
	}
	if name != "" && isProtectedName(name) {
		return toolPayload(result.fail(fmt.Sprintf("refusing to kill protected process %q", name))), nil
	}

	var command string
	switch {
	case runtime.GOOS == "windows" && name != "":
		command = fmt.Sprintf("taskkill /IM \"%s\" /F", name)
	case runtime.GOOS == "windows":
		command = fmt.Sprintf("taskkill /PID %d /F", input.PID)
	case name != "":
		command = fmt.Sprintf("pkill -x %s", shellQuoteArg(name))
	default:
		command = fmt.Sprintf("kill -TERM %d", input.PID)
	}

	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	if res.ExitCode != 0 {
		return toolPayload(result.fail("process not found or could not be terminated")), nil
	}

	time.Sleep(500 * time.Millisecond)
	if still, checkErr := processStillRunning(ctx, t.manager, name, input.PID); checkErr == nil && still {
		return toolPayload(result.fail("process still running after termination",
			"The process may require elevated privileges to kill.")), nil
	}

	return toolPayload(result.ok(map[string]interface{}{"name": name, "pid": input.PID}, res.Stdout)), nil
}

// processStillRunning re-checks whether the target process is alive,
// so kill_process reports success only once the process is confirmed
// gone rather than trusting the kill command's exit code alone.
func processStillRunning(ctx context.Context, m runner, name string, pid int) (bool, error) {
	var command string
	switch {
	case runtime.GOOS == "windows" && name != "":
		command = fmt.Sprintf("tasklist /FI \"IMAGENAME eq %s\" | findstr /I \"%s\"", name, name)
	case runtime.GOOS == "windows":
		command = fmt.Sprintf("tasklist /FI \"PID eq %d\" | findstr %d", pid, pid)
	case name != "":
		command = fmt.Sprintf("pgrep -x %s", shellQuoteArg(name))
	default:
		command = fmt.Sprintf("kill -0 %d", pid)
	}
	res, err := runShell(ctx, m, command)
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// shellQuoteArg wraps a value in single quotes for inclusion in a shell
// command, escaping any embedded single quote. Names are validated
// against the protected list before reaching here but this still closes
// off metacharacter injection through the name field.
func shellQuoteArg(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

type CleanTempFilesTool struct{ manager runner }

func NewCleanTempFilesTool(manager runner) *CleanTempFilesTool {
	return &CleanTempFilesTool{manager: manager}
}

func (t *CleanTempFilesTool) Name() string { return "clean_temp_files" }

func (t *CleanTempFilesTool) Description() string {
	return "Delete files older than a given age from the OS temp directory."
}

func (t *CleanTempFilesTool) Schema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"older_than_days": map[string]interface{}{
				"type":        "integer",
				"description": "Only delete files older than this many days.",
				"default":     7,
				"minimum":     0,
			},
		},
	})
}

func (t *CleanTempFilesTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	result := newResult(t.Name())
	if t.manager == nil {
		return toolPayload(result.fail("exec manager unavailable")), nil
	}
	var input struct {
		OlderThanDays int `json:"older_than_days"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolPayload(result.fail(fmt.Sprintf("invalid parameters: %v", err))), nil
	}
	if input.OlderThanDays <= 0 {
		input.OlderThanDays = 7
	}

	var command string
	switch runtime.GOOS {
	case "darwin", "linux":
		command = fmt.Sprintf("find /tmp -mindepth 1 -maxdepth 2 -mtime +%d -not -path '/tmp' -delete", input.OlderThanDays)
	case "windows":
		command = fmt.Sprintf(
			"powershell -Command \"Get-ChildItem $env:TEMP -Recurse -Force | Where-Object { $_.LastWriteTime -lt (Get-Date).AddDays(-%d) } | Remove-Item -Force -Recurse -ErrorAction SilentlyContinue\"",
			input.OlderThanDays)
	default:
		return toolPayload(result.unsupportedPlatform()), nil
	}

	res, err := runShell(ctx, t.manager, command)
	if err != nil {
		return toolPayload(result.fail(err.Error())), nil
	}
	return toolPayload(result.ok(map[string]interface{}{
		"older_than_days": input.OlderThanDays,
	}, res.Stdout)), nil
}

// mustSchema marshals a schema map, falling back to a bare object schema
// on the (unexpected) marshal error.
func mustSchema(schema map[string]interface{}) json.RawMessage {
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}
