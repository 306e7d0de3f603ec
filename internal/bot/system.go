package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dfuchss/deltabot/internal/channel"
	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
	"github.com/dfuchss/deltabot/internal/session"
)

// commandPrefix marks system commands. They bypass the dialog engine.
const commandPrefix = `\`

// commandFunc handles one system command and returns the reply text.
type commandFunc func(ctx context.Context, msg domain.InboundMessage, args []string) string

// systemCommand is one entry of the system command table.
type systemCommand struct {
	name      string
	usage     string
	adminOnly bool
	run       commandFunc
}

// commandTable holds the system commands keyed by name.
type commandTable struct {
	settings *Settings
	sessions *session.Manager
	channels *channel.Registry
	commands map[string]systemCommand
	log      *logging.Logger
}

func newCommandTable(settings *Settings, sessions *session.Manager, channels *channel.Registry, log *logging.Logger) *commandTable {
	t := &commandTable{
		settings: settings,
		sessions: sessions,
		channels: channels,
		commands: make(map[string]systemCommand),
		log:      log.Sub("system"),
	}

	for _, cmd := range []systemCommand{
		{"help", `\help`, false, t.cmdHelp},
		{"echo", `\echo <text>`, false, t.cmdEcho},
		{"state", `\state`, true, t.cmdState},
		{"respond-all", `\respond-all [on|off]`, true, t.cmdRespondAll},
		{"keep", `\keep [on|off]`, true, t.cmdKeep},
		{"debug", `\debug [on|off]`, true, t.cmdDebug},
		{"listen", `\listen`, true, t.cmdListen},
		{"admin", `\admin add|remove <user> | \admin list`, true, t.cmdAdmin},
	} {
		t.commands[cmd.name] = cmd
	}
	return t
}

// Run parses and executes a system command and sends the reply.
func (t *commandTable) Run(ctx context.Context, msg domain.InboundMessage, sender domain.Sender) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(msg.Body), commandPrefix))
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := t.commands[name]
	if !ok {
		t.reply(ctx, msg, sender, fmt.Sprintf("Unknown command %q. Try \\help.", name))
		return
	}

	if cmd.adminOnly && !t.settings.IsAdmin(msg.From) {
		t.log.Warn().Str("from", msg.From).Str("command", name).Msg("denied system command")
		t.reply(ctx, msg, sender, "You are not a bot admin.")
		return
	}

	t.log.Info().Str("from", msg.From).Str("command", name).Msg("system command")
	t.reply(ctx, msg, sender, cmd.run(ctx, msg, args))
}

func (t *commandTable) reply(ctx context.Context, msg domain.InboundMessage, sender domain.Sender, text string) {
	if text == "" {
		return
	}
	if err := sender.Send(ctx, msg, text, true); err != nil {
		t.log.Error().Err(err).Str("from", msg.From).Msg("failed to send command reply")
	}
}

func (t *commandTable) cmdHelp(_ context.Context, msg domain.InboundMessage, _ []string) string {
	admin := t.settings.IsAdmin(msg.From)
	var names []string
	for name, cmd := range t.commands {
		if cmd.adminOnly && !admin {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("System commands:")
	for _, name := range names {
		b.WriteString("\n")
		b.WriteString(t.commands[name].usage)
	}
	return b.String()
}

func (t *commandTable) cmdEcho(_ context.Context, msg domain.InboundMessage, args []string) string {
	if len(args) == 0 {
		return "Nothing to echo."
	}
	return strings.Join(args, " ")
}

func (t *commandTable) cmdState(_ context.Context, _ domain.InboundMessage, _ []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sessions: %d", t.sessions.Count())
	fmt.Fprintf(&b, "\nRespond to all: %t", t.settings.RespondAll())
	fmt.Fprintf(&b, "\nKeep messages: %t", t.settings.KeepMessages())
	fmt.Fprintf(&b, "\nDebug: %t", t.settings.Debug())
	fmt.Fprintf(&b, "\nAdmins: %s", strings.Join(t.settings.Admins(), ", "))
	for _, st := range t.channels.Status() {
		fmt.Fprintf(&b, "\nChannel %s: connected=%t running=%t", st.ChannelID, st.Connected, st.Running)
	}
	return b.String()
}

func (t *commandTable) cmdRespondAll(_ context.Context, _ domain.InboundMessage, args []string) string {
	return t.toggle("Respond to all", args, t.settings.RespondAll, t.settings.SetRespondAll)
}

func (t *commandTable) cmdKeep(_ context.Context, _ domain.InboundMessage, args []string) string {
	return t.toggle("Keep messages", args, t.settings.KeepMessages, t.settings.SetKeepMessages)
}

func (t *commandTable) cmdDebug(_ context.Context, _ domain.InboundMessage, args []string) string {
	return t.toggle("Debug", args, t.settings.Debug, t.settings.SetDebug)
}

// toggle implements the shared on/off/report pattern of the boolean
// system commands.
func (t *commandTable) toggle(label string, args []string, get func() bool, set func(bool) error) string {
	if len(args) == 0 {
		return fmt.Sprintf("%s is %s.", label, onOff(get()))
	}
	var v bool
	switch strings.ToLower(args[0]) {
	case "on":
		v = true
	case "off":
		v = false
	default:
		return fmt.Sprintf("Expected on or off, got %q.", args[0])
	}
	if err := set(v); err != nil {
		t.log.Error().Err(err).Str("setting", label).Msg("failed to persist setting")
		return "Could not save that setting."
	}
	return fmt.Sprintf("%s is now %s.", label, onOff(v))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (t *commandTable) cmdListen(_ context.Context, msg domain.InboundMessage, _ []string) string {
	if msg.IsDirect() {
		return "Listen only works in group chats."
	}
	if t.settings.ListensIn(msg.ChannelID, msg.ChatID) {
		if err := t.settings.Unlisten(msg.ChannelID, msg.ChatID); err != nil {
			t.log.Error().Err(err).Str("chat", msg.ChatID).Msg("failed to unregister chat")
			return "Could not update the chat list."
		}
		return fmt.Sprintf("I stopped listening in %s.", msg.ChatID)
	}
	if err := t.settings.Listen(msg.ChannelID, msg.ChatID); err != nil {
		t.log.Error().Err(err).Str("chat", msg.ChatID).Msg("failed to register chat")
		return "Could not update the chat list."
	}
	return fmt.Sprintf("I now listen in %s.", msg.ChatID)
}

func (t *commandTable) cmdAdmin(_ context.Context, msg domain.InboundMessage, args []string) string {
	if len(args) == 0 {
		return `Usage: \admin add|remove <user> | \admin list`
	}
	switch strings.ToLower(args[0]) {
	case "list":
		admins := t.settings.Admins()
		if len(admins) == 0 {
			return "No admins configured."
		}
		return "Admins: " + strings.Join(admins, ", ")
	case "add":
		if len(args) < 2 {
			return `Usage: \admin add <user>`
		}
		if err := t.settings.AddAdmin(args[1], msg.From); err != nil {
			t.log.Error().Err(err).Str("user", args[1]).Msg("failed to add admin")
			return "Could not update the admin list."
		}
		return fmt.Sprintf("%s is now a bot admin.", args[1])
	case "remove":
		if len(args) < 2 {
			return `Usage: \admin remove <user>`
		}
		if err := t.settings.RemoveAdmin(args[1]); err != nil {
			t.log.Error().Err(err).Str("user", args[1]).Msg("failed to remove admin")
			return "Could not update the admin list."
		}
		return fmt.Sprintf("%s is no longer a bot admin.", args[1])
	default:
		return fmt.Sprintf("Unknown admin subcommand %q.", args[0])
	}
}
