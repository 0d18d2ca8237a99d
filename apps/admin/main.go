package main

import (
	"log"
	"net/http"
	"os"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/admission"
	"github.com/alrashid-edu/portal/core/banner"
	emailsvc "github.com/alrashid-edu/portal/services/email"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	client := &http.Client{Timeout: core.Conf.Upstream.Timeout}
	cli := commandLine{
		banner:  banner.NewClient(core.Conf.Upstream.APIBaseURL, client, nil, core.NewStdLogger(logger)),
		mailSvc: emailsvc.NewConsoleService(),
	}
	if endpoint := core.Conf.Upstream.SubmissionEndpoint; endpoint != "" {
		cli.submitter = admission.NewHTTPSubmitter(endpoint, client)
	} else {
		cli.submitter = admission.NewEmailSubmitter(cli.mailSvc, core.Conf.AdmissionEmail)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
