// Package system exposes clock, application and volume control tools.
package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/tool/service/executor"
)

const SkillName = "system"

// ErrUnsupportedOS is returned for tools that have no command on the host OS.
var ErrUnsupportedOS = errors.New("not supported on this operating system")

// CommandRunner is the subset of executor.OSCommandExecutor the skill needs.
type CommandRunner interface {
	Run(ctx context.Context, command []string, timeout time.Duration) (*executor.Result, error)
	Start(command []string) error
}

// Options configures the system skill.
type Options struct {
	GOOS           string // defaults to runtime.GOOS
	CommandTimeout time.Duration
	Now            func() time.Time
	Hostname       func() (string, error)
}

type skill struct {
	runner CommandRunner
	opts   Options
}

// New builds the system skill on top of runner.
func New(runner CommandRunner, opts Options) *tool.Set {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Hostname == nil {
		opts.Hostname = os.Hostname
	}
	s := &skill{runner: runner, opts: opts}

	appParams := tool.Object(map[string]*tool.Schema{
		"app_name": tool.String("Name of the application, e.g. 'Safari' or 'firefox'"),
	}, "app_name")

	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "get_time",
			Description: "Get the current local time",
			Parameters:  tool.Object(nil),
		}, s.getTime),
		tool.Typed(tool.Declaration{
			Name:        "get_date",
			Description: "Get today's date",
			Parameters:  tool.Object(nil),
		}, s.getDate),
		tool.Typed(tool.Declaration{
			Name:        "open_application",
			Description: "Open an application on the computer",
			Parameters:  appParams,
		}, s.openApplication),
		tool.Typed(tool.Declaration{
			Name:        "close_application",
			Description: "Close a running application",
			Parameters:  appParams,
		}, s.closeApplication),
		tool.Typed(tool.Declaration{
			Name:        "set_volume",
			Description: "Set system output volume (0-100)",
			Parameters: tool.Object(map[string]*tool.Schema{
				"level": tool.Integer("Volume level from 0 to 100"),
			}, "level"),
		}, s.setVolume),
		tool.Typed(tool.Declaration{
			Name:        "system_info",
			Description: "Get basic information about this computer",
			Parameters:  tool.Object(nil),
		}, s.systemInfo),
	)
}

func (s *skill) getTime(context.Context, struct{}) (tool.Result, error) {
	return tool.OK("The time is %s", s.opts.Now().Format("3:04 PM")), nil
}

func (s *skill) getDate(context.Context, struct{}) (tool.Result, error) {
	return tool.OK("Today is %s", s.opts.Now().Format("Monday, January 2, 2006")), nil
}

type appRequest struct {
	AppName string `json:"app_name"`
}

func (r *appRequest) Validate() error {
	r.AppName = strings.TrimSpace(r.AppName)
	if r.AppName == "" {
		return errors.New("app_name is required")
	}
	if strings.ContainsAny(r.AppName, "\"&|;`$<>\n") {
		return fmt.Errorf("invalid application name %q", r.AppName)
	}
	return nil
}

func (s *skill) openApplication(ctx context.Context, req appRequest) (tool.Result, error) {
	var err error
	switch s.opts.GOOS {
	case "darwin":
		err = s.run(ctx, "open", "-a", req.AppName)
	case "windows":
		err = s.run(ctx, "cmd", "/c", "start", "", req.AppName)
	default:
		err = s.runner.Start([]string{strings.ToLower(req.AppName)})
	}
	if err != nil {
		return tool.Result{}, fmt.Errorf("open %s: %w", req.AppName, err)
	}
	return tool.OK("Opened %s", req.AppName), nil
}

func (s *skill) closeApplication(ctx context.Context, req appRequest) (tool.Result, error) {
	var err error
	switch s.opts.GOOS {
	case "darwin":
		err = s.run(ctx, "osascript", "-e", fmt.Sprintf("tell application %q to quit", req.AppName))
	case "windows":
		name := req.AppName
		if !strings.HasSuffix(strings.ToLower(name), ".exe") {
			name += ".exe"
		}
		err = s.run(ctx, "taskkill", "/IM", name)
	default:
		err = s.run(ctx, "pkill", "-x", strings.ToLower(req.AppName))
	}
	if err != nil {
		return tool.Result{}, fmt.Errorf("close %s: %w", req.AppName, err)
	}
	return tool.OK("Closed %s", req.AppName), nil
}

type volumeRequest struct {
	Level int `json:"level"`
}

func (s *skill) setVolume(ctx context.Context, req volumeRequest) (tool.Result, error) {
	level := max(0, min(100, req.Level))

	var err error
	switch s.opts.GOOS {
	case "darwin":
		err = s.run(ctx, "osascript", "-e", fmt.Sprintf("set volume output volume %d", level))
	case "linux":
		err = s.run(ctx, "amixer", "-q", "sset", "Master", fmt.Sprintf("%d%%", level))
	default:
		return tool.Result{}, fmt.Errorf("set_volume: %w", ErrUnsupportedOS)
	}
	if err != nil {
		return tool.Result{}, fmt.Errorf("set volume: %w", err)
	}
	return tool.OK("Volume set to %d%%", level), nil
}

type infoResponse struct {
	Status   string `json:"status"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Hostname string `json:"hostname,omitempty"`
	CPUs     int    `json:"cpus"`
	User     string `json:"user,omitempty"`
}

func (s *skill) systemInfo(context.Context, struct{}) (infoResponse, error) {
	host, _ := s.opts.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	return infoResponse{
		Status:   "success",
		OS:       s.opts.GOOS,
		Arch:     runtime.GOARCH,
		Hostname: host,
		CPUs:     runtime.NumCPU(),
		User:     user,
	}, nil
}

// run executes a command and folds stderr into the error on failure.
func (s *skill) run(ctx context.Context, command ...string) error {
	res, err := s.runner.Run(ctx, command, s.opts.CommandTimeout)
	if err != nil {
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return err
	}
	return nil
}
