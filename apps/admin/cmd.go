package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/admission"
	"github.com/alrashid-edu/portal/core/banner"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	banner    *banner.Client
	mailSvc   core.EmailService
	submitter admission.Submitter
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  checkupstream - verify the school API is reachable")
	fmt.Println("  testsubmit -name NAME - push a sample admission application through the configured submitter")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	testSubmitCmd := flag.NewFlagSet("testsubmit", flag.ExitOnError)
	testSubmitName := testSubmitCmd.String("name", "Test Student", "The sample applicant's name.")

	switch args[1] {
	case "checkupstream":
		return cli.checkUpstream()
	case "testsubmit":
		if err := testSubmitCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.testSubmit(*testSubmitName)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) checkUpstream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	image, err := cli.banner.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("upstream OK (banner: %s)\n", image)
	return nil
}

func (cli *commandLine) testSubmit(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	form := &admission.Form{
		AppliedClass:    "grade1",
		StudentCivilID:  "123456789012",
		StudentName:     name,
		Nationality:     "Testland",
		GuardianName:    name + " Sr.",
		FatherCivilID:   "210987654321",
		BirthDate:       "2018-01-01",
		ResidencyExpiry: "2030-01-01",
		PassportNumber:  "T0000000",
		PassportExpiry:  "2030-01-01",
		SpecialNeeds:    admission.AnswerNo,
		HasSiblings:     admission.AnswerNo,
		Agreement:       true,
	}
	if err := cli.submitter.Submit(ctx, form); err != nil {
		return err
	}
	fmt.Println("sample application submitted")
	return nil
}
