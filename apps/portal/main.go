package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	portalapi "github.com/alrashid-edu/portal/apps/portal/echo"
	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/admission"
	"github.com/alrashid-edu/portal/core/banner"
	emailsvc "github.com/alrashid-edu/portal/services/email"
	logsvc "github.com/alrashid-edu/portal/services/logger"
)

func main() {
	std := log.New(os.Stdout, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug || core.Conf.RollbarToken == "" {
		logger = core.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	validate, uni := core.NewValidator()
	client := &http.Client{Timeout: core.Conf.Upstream.Timeout}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var submitter admission.Submitter
	if endpoint := core.Conf.Upstream.SubmissionEndpoint; endpoint != "" {
		submitter = admission.NewHTTPSubmitter(endpoint, client)
	} else {
		submitter = admission.NewEmailSubmitter(mailSvc, core.Conf.AdmissionEmail)
	}

	var cache *redis.Client
	if addr := core.Conf.RedisAddr; addr != "" {
		cache = redis.NewClient(&redis.Options{Addr: addr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(pingCtx).Err(); err != nil {
			// the portal runs fine without the banner cache
			logger.Warn("redis unavailable, banner cache disabled", err)
			cache = nil
		}
		cancel()
	}

	// start portal server
	app := portalapi.NewServer(&portalapi.Options{
		Addr:          core.Conf.Server.Addr,
		SecureCookies: !core.Conf.Debug,
		Logger:        logger,
		Validate:      validate,
		Uni:           uni,
		Client:        client,
		Submitter:     submitter,
		Banner:        banner.NewClient(core.Conf.Upstream.APIBaseURL, client, cache, logger),
	})
	app.Start()
}
