package methods

func shell(cmd string) ProcessParams {
	return ProcessParams{Argv: []string{"su", "-c", cmd}}
}

// Display lists the display power methods.
var Display = Catalog{
	Name: "display",
	Entries: []MethodEntry{
		{
			ID: NoopID, Title: "Do nothing",
			Off: LogParams{Level: 2, Msg: "Do nothing to power off display"},
			On:  LogParams{Level: 2, Msg: "Do nothing to power back on display"},
		},
		{
			ID: "cec-builtin", Title: "CEC (built-in)",
			Off: BuiltinParams{Name: "CECStandby", Wait: true},
			On:  BuiltinParams{Name: "CECActivateSource", Wait: true},
		},
		{
			ID: "no-signal-rpi", Title: "No Signal on Raspberry Pi (using vcgencmd)",
			Off: ProcessParams{Argv: []string{"vcgencmd", "display_power", "0"}},
			On:  ProcessParams{Argv: []string{"vcgencmd", "display_power", "1"}},
		},
		{
			ID: "dpms-builtin", Title: "DPMS (built-in)",
			Off: BuiltinParams{Name: "ToggleDPMS", Wait: true},
			On:  BuiltinParams{Name: "ToggleDPMS", Wait: true},
		},
		{
			ID: "dpms-xset", Title: "DPMS (using xset)",
			Off: ProcessParams{Argv: []string{"xset", "dpms", "force", "off"}},
			On:  ProcessParams{Argv: []string{"xset", "dpms", "force", "on"}},
		},
		{
			ID: "dpms-vbetool", Title: "DPMS (using vbetool)",
			Off: ProcessParams{Argv: []string{"vbetool", "dpms", "off"}},
			On:  ProcessParams{Argv: []string{"vbetool", "dpms", "on"}},
		},
		{
			ID: "dpms-xrandr", Title: "DPMS (using xrandr)",
			Off: ProcessParams{Argv: []string{"xrandr", "--output", "CRT-0", "--off"}},
			On:  ProcessParams{Argv: []string{"xrandr", "--output", "CRT-0", "--auto"}},
		},
		{
			ID: "cec-android", Title: "CEC on Android (kernel)",
			Off: shell("echo 0 >/sys/devices/virtual/graphics/fb0/cec"),
			On:  shell("echo 1 >/sys/devices/virtual/graphics/fb0/cec"),
		},
		{
			// 1 turns the backlight off, 0 turns it on
			ID: "backlight-rpi", Title: "Backlight on Raspberry Pi (kernel)",
			Off: shell("echo 1 >/sys/class/backlight/rpi_backlight/bl_power"),
			On:  shell("echo 0 >/sys/class/backlight/rpi_backlight/bl_power"),
		},
		{
			ID: "backlight-odroid-c2", Title: "Backlight on Odroid C2 (kernel)",
			Off: shell("echo 0 >/sys/class/amhdmitx/amhdmitx0/phy"),
			On:  shell("echo 1 >/sys/class/amhdmitx/amhdmitx0/phy"),
		},
	},
}

// Power lists the system power methods. They only have an off action:
// coming back from suspend or shutdown is up to the OS.
var Power = Catalog{
	Name: "power",
	Entries: []MethodEntry{
		{ID: NoopID, Title: "Do nothing", Off: LogParams{Level: 2, Msg: "Do nothing to power off system"}},
		{ID: "suspend-builtin", Title: "Suspend (built-in)", Off: RemoteCallParams{Method: "System.Suspend"}},
		{ID: "hibernate-builtin", Title: "Hibernate (built-in)", Off: RemoteCallParams{Method: "System.Hibernate"}},
		{ID: "quit-builtin", Title: "Quit (built-in)", Off: RemoteCallParams{Method: "Application.Quit"}},
		{ID: "shutdown-builtin", Title: "ShutDown action (built-in)", Off: RemoteCallParams{Method: "System.Shutdown"}},
		{ID: "reboot-builtin", Title: "Reboot (built-in)", Off: RemoteCallParams{Method: "System.Reboot"}},
		{ID: "powerdown-builtin", Title: "Powerdown (built-in)", Off: RemoteCallParams{Method: "System.Powerdown"}},
	},
}
