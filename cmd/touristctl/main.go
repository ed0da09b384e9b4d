// Command touristctl drives the tourist safety API from a terminal session.
//
//	touristctl login EMAIL PASSWORD ROLE
//	touristctl register NAME EMAIL PASSWORD ROLE [DESTINATION]
//	touristctl whoami | logout
//	touristctl zones [safety|attraction]
//	touristctl nearest LAT LNG
//	touristctl fix DEVICE LAT LNG
//	touristctl status DEVICE | stop DEVICE
//	touristctl sos [DEVICE] [EMERGENCY] [MESSAGE]
//	touristctl alerts [all|active|critical|unresolved|TYPE]
//	touristctl ack|investigate|resolve ID...
//
// The session is kept in redis under TOURISTCTL_PROFILE when REDIS_ADDR is set,
// otherwise it lasts for a single invocation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"backend-touristsafety/internal/alerts"
	"backend-touristsafety/internal/apiclient"
	"backend-touristsafety/internal/config"
	"backend-touristsafety/internal/db"
	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/kv"
	"backend-touristsafety/internal/logger"
	"backend-touristsafety/internal/session"
	"backend-touristsafety/internal/tracking"
	"backend-touristsafety/internal/zones"

	"github.com/joho/godotenv"
)

var errUsage = errors.New("usage: touristctl login|register|whoami|logout|zones|nearest|fix|status|stop|sos|alerts|ack|investigate|resolve ...")

var alertVerbs = map[string]alerts.Status{
	"ack":         alerts.StatusAcknowledged,
	"investigate": alerts.StatusInvestigating,
	"resolve":     alerts.StatusResolved,
}

func main() {
	_ = godotenv.Load()
	cfg := config.LoadClient()
	logger.Setup(cfg.LogLevel, "text")

	var store kv.Store
	rdb := db.ConnectRedis(cfg.Server())
	if rdb != nil {
		store = kv.NewRedisStore(rdb, cfg.Profile)
	} else {
		logger.L().Warn("session_not_persisted", "reason", "REDIS_ADDR not set")
		store = kv.NewMemoryStore()
	}

	code := newCLI(cfg.APIURL, store, os.Stdout, os.Stderr).run(context.Background(), os.Args[1:])
	if rdb != nil {
		_ = rdb.Close()
	}
	os.Exit(code)
}

type cli struct {
	session *session.Session
	api     *apiclient.Client
	out     io.Writer
	errOut  io.Writer
}

func newCLI(apiURL string, store kv.Store, out, errOut io.Writer) *cli {
	c := &cli{out: out, errOut: errOut}
	c.session = session.New(store, apiclient.NewAuthBackend(apiclient.New(apiURL)),
		session.WithNavigator(session.NavigatorFunc(func(path string) {
			fmt.Fprintf(errOut, "signed out, log in again via %q\n", path)
		})))
	c.api = apiclient.New(apiURL,
		apiclient.WithAuth(c.session),
		apiclient.WithNotifier(apiclient.NotifierFunc(func(msg string) {
			fmt.Fprintln(errOut, msg)
		})))
	return c
}

func (c *cli) run(ctx context.Context, args []string) int {
	if err := c.dispatch(ctx, args); err != nil {
		fmt.Fprintln(c.errOut, err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		if len(rest) != 3 {
			return errUsage
		}
		return c.result(c.session.Login(ctx, rest[0], rest[1], identity.ParseRole(rest[2])))
	case "register":
		if len(rest) < 4 {
			return errUsage
		}
		reg := identity.Registration{Name: rest[0], Email: rest[1], Password: rest[2], Role: identity.ParseRole(rest[3])}
		if len(rest) > 4 {
			reg.Destination = rest[4]
		}
		return c.result(c.session.Register(ctx, reg))
	case "whoami":
		info, ok := c.session.UserInfo(ctx)
		if !ok {
			return errors.New("not logged in")
		}
		return c.print(map[string]any{"userType": c.session.UserType(ctx), "userInfo": info})
	case "logout":
		c.session.Logout(ctx)
		return nil
	case "zones":
		var kind zones.Kind
		if len(rest) > 0 {
			kind, _ = zones.ParseKind(rest[0])
		}
		zs, err := c.api.Zones(ctx, kind)
		if err != nil {
			return err
		}
		return c.print(zs)
	case "nearest":
		lat, lng, err := coords(rest)
		if err != nil {
			return err
		}
		m, err := c.api.NearestZone(ctx, lat, lng, zones.KindSafety)
		if err != nil {
			return err
		}
		return c.print(m)
	case "fix":
		if len(rest) != 3 {
			return errUsage
		}
		lat, lng, err := coords(rest[1:])
		if err != nil {
			return err
		}
		fix, err := c.api.ReportFix(ctx, rest[0], tracking.Fix{Lat: lat, Lng: lng})
		if err != nil {
			return err
		}
		return c.print(fix)
	case "status":
		if len(rest) != 1 {
			return errUsage
		}
		st, err := c.api.DeviceStatus(ctx, rest[0])
		if err != nil {
			return err
		}
		return c.print(st)
	case "stop":
		if len(rest) != 1 {
			return errUsage
		}
		return c.api.StopTracking(ctx, rest[0])
	case "sos":
		var req alerts.SOSRequest
		if info, ok := c.session.UserInfo(ctx); ok {
			req.TouristName = info.Name
		}
		for i, field := range []*string{&req.DeviceID, &req.Emergency, &req.Message} {
			if i < len(rest) {
				*field = rest[i]
			}
		}
		a, err := c.api.SendSOS(ctx, req)
		if err != nil {
			return err
		}
		return c.print(a)
	case "alerts":
		filter := alerts.FilterAll
		if len(rest) > 0 {
			f, ok := alerts.ParseFilter(rest[0])
			if !ok {
				return fmt.Errorf("unknown filter %q", rest[0])
			}
			filter = f
		}
		list, err := c.api.Alerts(ctx, filter)
		if err != nil {
			return err
		}
		return c.print(list)
	case "ack", "investigate", "resolve":
		if len(rest) == 0 {
			return errUsage
		}
		ids := make([]int64, 0, len(rest))
		for _, arg := range rest {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("alert id %q: %w", arg, err)
			}
			ids = append(ids, id)
		}
		if len(ids) == 1 {
			a, err := c.api.UpdateAlertStatus(ctx, ids[0], alertVerbs[cmd])
			if err != nil {
				return err
			}
			return c.print(a)
		}
		res, err := c.api.BulkUpdateAlertStatus(ctx, ids, alertVerbs[cmd])
		if err != nil {
			return err
		}
		return c.print(res)
	default:
		return errUsage
	}
}

func (c *cli) result(res session.Result) error {
	if !res.Success {
		return errors.New(res.Message())
	}
	return c.print(map[string]any{"userType": res.Role, "userInfo": res.UserInfo})
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func coords(args []string) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, errUsage
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	return lat, lng, nil
}
