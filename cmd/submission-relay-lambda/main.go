package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/aliqulovx561-ai/writing-set-two/internal/app"
	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
	"github.com/aliqulovx561-ai/writing-set-two/internal/lambdahttp"
)

func main() {
	cfg, err := config.Load("")
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Build(cfg, os.Stdout, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building relay: %v\n", err)
		os.Exit(1)
	}
	defer a.Close() // nolint:errcheck

	lambda.Start(lambdahttp.New(a.Relay()).Handle)
}
