package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"peoplecounter/internal/app"
	"peoplecounter/internal/config"
	"peoplecounter/internal/dto"
)

func main() {
	cliApp := &cli.App{
		Name:   "peoplecounter",
		Usage:  "count people in images, videos and a live camera feed",
		Action: runMenu,
		Commands: []*cli.Command{
			{
				Name:      "image",
				Usage:     "count people on a single image",
				ArgsUsage: "PATH",
				Action: withApp(func(c *cli.Context, application *app.App) (dto.RunSummary, error) {
					return application.Manager().ProcessImage(c.Context, c.Args().First())
				}),
			},
			{
				Name:      "video",
				Usage:     "count people in a video file",
				ArgsUsage: "PATH",
				Action: withApp(func(c *cli.Context, application *app.App) (dto.RunSummary, error) {
					return application.Manager().ProcessVideo(c.Context, c.Args().First())
				}),
			},
			{
				Name:  "live",
				Usage: "count people on the camera feed",
				Action: withApp(func(c *cli.Context, application *app.App) (dto.RunSummary, error) {
					return application.Manager().ProcessLive(c.Context)
				}),
			},
			{
				Name:   "fetch",
				Usage:  "download the model assets and exit",
				Action: fetchAssets,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("People counter failed: %v", err)
	}
}

// runMenu is the default action: prepare the detector, then hand over to the menu.
func runMenu(c *cli.Context) error {
	application, err := app.NewApp(config.Load())
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Start(c.Context); err != nil {
		return err
	}
	return application.RunMenu(c.Context, os.Stdin, os.Stdout)
}

func withApp(run func(c *cli.Context, application *app.App) (dto.RunSummary, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		application, err := app.NewApp(config.Load())
		if err != nil {
			return err
		}
		defer application.Close()

		if err := application.Start(c.Context); err != nil {
			return err
		}

		summary, err := run(c, application)
		if err != nil {
			return err
		}
		fmt.Printf("People Count: %d (peak %d over %d frame(s))\n", summary.LastCount, summary.PeakCount, summary.Frames)
		return nil
	}
}

func fetchAssets(c *cli.Context) error {
	application, err := app.NewApp(config.Load())
	if err != nil {
		return err
	}
	defer application.Close()

	report := application.FetchAssets(c.Context)
	if !report.OK() {
		return fmt.Errorf("%d asset(s) failed to download", len(report.Failed))
	}
	return nil
}
