//go:build linux

package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// setterCommand is a desktop tool able to show an image full screen
type setterCommand struct {
	Name   string
	Binary string
	Args   []string // {path} is replaced with the image path
}

// setterCommands is ordered by priority, first match wins
var setterCommands = []setterCommand{
	{Name: "swww", Binary: "swww", Args: []string{"img", "{path}"}},
	{Name: "hyprpaper", Binary: "hyprctl", Args: []string{"hyprpaper", "wallpaper", ",{path}"}},
	{Name: "swaybg", Binary: "swaybg", Args: []string{"-i", "{path}", "-m", "fit"}},
	{Name: "gnome", Binary: "gsettings", Args: []string{"set", "org.gnome.desktop.background", "picture-uri", "file://{path}"}},
	{Name: "feh", Binary: "feh", Args: []string{"--bg-max", "{path}"}},
	{Name: "nitrogen", Binary: "nitrogen", Args: []string{"--set-zoom", "{path}"}},
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// LinuxSetter puts frames on the desktop background with a detected setter tool
type LinuxSetter struct {
	logger  *zap.Logger
	command setterCommand
}

// NewSetter detects a setter tool on PATH
func NewSetter(logger *zap.Logger) (*LinuxSetter, error) {
	cmd := detectCommand(logger)
	if cmd.Binary == "" {
		return nil, fmt.Errorf("no supported wallpaper command found on this system")
	}

	logger.Info("Wallpaper setter detected",
		zap.String("name", cmd.Name),
		zap.String("binary", cmd.Binary))

	return &LinuxSetter{
		logger:  logger,
		command: cmd,
	}, nil
}

// detectCommand prefers tools native to the running session
func detectCommand(logger *zap.Logger) setterCommand {
	desktop := os.Getenv("XDG_CURRENT_DESKTOP")
	session := os.Getenv("XDG_SESSION_TYPE")
	wayland := os.Getenv("WAYLAND_DISPLAY")
	hyprland := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")

	logger.Debug("Detecting wallpaper command",
		zap.String("desktop", desktop),
		zap.String("session", session),
		zap.String("wayland", wayland),
		zap.String("hyprland", hyprland))

	var preferred []string
	switch {
	case hyprland != "":
		preferred = []string{"swww", "hyprpaper"}
	case strings.Contains(strings.ToLower(desktop), "gnome"):
		preferred = []string{"gnome"}
	case wayland != "" || session == "wayland":
		preferred = []string{"swww", "swaybg"}
	}

	for _, name := range preferred {
		for _, cmd := range setterCommands {
			if cmd.Name == name && commandExists(cmd.Binary) {
				return cmd
			}
		}
	}

	for _, cmd := range setterCommands {
		if commandExists(cmd.Binary) {
			logger.Info("Using fallback wallpaper command", zap.String("name", cmd.Name))
			return cmd
		}
	}

	return setterCommand{}
}

func commandExists(binary string) bool {
	_, err := lookPath(binary)
	return err == nil
}

// SetWallpaper shows the image at imagePath
func (s *LinuxSetter) SetWallpaper(ctx context.Context, imagePath string) error {
	args := make([]string, len(s.command.Args))
	for i, arg := range s.command.Args {
		args[i] = strings.ReplaceAll(arg, "{path}", imagePath)
	}

	s.logger.Debug("Setting wallpaper",
		zap.String("command", s.command.Binary),
		zap.Strings("args", args))

	output, err := exec.CommandContext(ctx, s.command.Binary, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to set wallpaper with %s: %w (output: %s)",
			s.command.Name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Name returns the detected tool name
func (s *LinuxSetter) Name() string {
	return s.command.Name
}
