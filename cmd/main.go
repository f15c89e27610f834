package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"memetrader/src/database"
	"memetrader/src/repository"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Memetrader CMD"
	app.Usage = "The memetrader command line interface"

	app.Commands = []cli.Command{
		positionsCMD,
		winrateCMD,
		signalsCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	positionsCMD = cli.Command{
		Name:   "positions",
		Usage:  "list live positions",
		Action: positionsAction,
		Flags:  []cli.Flag{},
	}
	winrateCMD = cli.Command{
		Name:   "winrate",
		Usage:  "win rate over recently closed positions",
		Action: winrateAction,
		Flags: []cli.Flag{
			cli.IntFlag{Name: "days", Usage: "lookback window in days", Value: 30},
		},
	}
	signalsCMD = cli.Command{
		Name:   "signals",
		Usage:  "list recent signals",
		Action: signalsAction,
		Flags: []cli.Flag{
			cli.IntFlag{Name: "limit", Usage: "max rows", Value: 20},
		},
	}
)

func positionsAction(_ *cli.Context) error {
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	positions, err := repository.NewPositionRepository().FindLive(context.Background())
	if err != nil {
		return err
	}

	for _, p := range positions {
		fmt.Printf("%-12s %-8s entry=%.8f current=%.8f pnl=%.2f%% sol=%.4f\n",
			p.Symbol, p.Status, p.EntryPrice, p.CurrentPrice, p.PnlPercent, p.AmountSOL)
	}
	fmt.Printf("%d live positions\n", len(positions))
	return nil
}

func winrateAction(c *cli.Context) error {
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	days := c.Int("days")
	closed, err := repository.NewPositionRepository().FindClosedSince(context.Background(), days)
	if err != nil {
		return err
	}
	if len(closed) == 0 {
		fmt.Printf("no closed positions in the last %d days\n", days)
		return nil
	}

	wins := 0
	for _, p := range closed {
		if p.PnlPercent > 0 {
			wins++
		}
	}
	fmt.Printf("closed=%d wins=%d win rate=%.1f%%\n",
		len(closed), wins, float64(wins)/float64(len(closed))*100)
	return nil
}

func signalsAction(c *cli.Context) error {
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	signals, err := repository.NewSignalRepository().FindRecent(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}

	for _, s := range signals {
		fmt.Printf("%-12s %-44s %-10s conf=%.2f %s\n",
			s.Symbol, s.Address, s.Source, s.Confidence, s.Timestamp.Format("2006-01-02 15:04"))
	}
	return nil
}
