package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mkevac/debugcharts" // pprof charts on the metric server mux

	"github.com/seimart/seimart"
	"github.com/seimart/seimart/sdk"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name: "seimart",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the marketplace and ledger service",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},
					&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/seimart?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
					&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", Usage: "sqlite dir path", EnvVars: []string{"SQLITE_DIR"}},
					&cli.BoolFlag{Name: "use_sqlite", Value: false, Usage: "run with sqlite instead of mysql", EnvVars: []string{"USE_SQLITE"}},
					&cli.StringFlag{Name: "rpc", Value: "https://evm-rpc.sei-apis.com", Usage: "sei evm rpc url", EnvVars: []string{"RPC"}},
					&cli.StringFlag{Name: "treasury_key", Value: "", Usage: "treasury wallet private key hex", EnvVars: []string{"TREASURY_KEY"}},
					&cli.Int64Flag{Name: "chain_id", Value: 1329, Usage: "sei evm chain id", EnvVars: []string{"CHAIN_ID"}},
					&cli.StringFlag{Name: "network", Value: "pacific-1", EnvVars: []string{"NETWORK"}},
					&cli.BoolFlag{Name: "s3_flag", Value: false, Usage: "run with s3 store", EnvVars: []string{"S3_FLAG"}},
					&cli.StringFlag{Name: "s3_acc_key", Value: "", Usage: "s3 access key", EnvVars: []string{"S3_ACC_KEY"}},
					&cli.StringFlag{Name: "s3_secret_key", Value: "", Usage: "s3 secret key", EnvVars: []string{"S3_SECRET_KEY"}},
					&cli.StringFlag{Name: "s3_prefix", Value: "seimart", Usage: "s3 bucket name prefix", EnvVars: []string{"S3_PREFIX"}},
					&cli.StringFlag{Name: "s3_region", Value: "ap-northeast-1", Usage: "s3 bucket region", EnvVars: []string{"S3_REGION"}},
					&cli.StringFlag{Name: "s3_endpoint", Value: "", Usage: "s3 compatible endpoint", EnvVars: []string{"S3_ENDPOINT"}},
					&cli.BoolFlag{Name: "kafka_flag", Value: false, Usage: "export purchase events to kafka", EnvVars: []string{"KAFKA_FLAG"}},
					&cli.StringFlag{Name: "kafka_uri", Value: "127.0.0.1:9092", EnvVars: []string{"KAFKA_URI"}},
					&cli.StringFlag{Name: "price_feed", Value: "", Usage: "sei/usd price feed url", EnvVars: []string{"PRICE_FEED"}},
					&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
				},
				Action: run,
			},
			{
				Name:  "buy",
				Usage: "purchase one listing from the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mart", Value: "http://127.0.0.1:8080", Usage: "marketplace url", EnvVars: []string{"MART"}},
					&cli.StringFlag{Name: "rpc", Value: "https://evm-rpc.sei-apis.com", Usage: "sei evm rpc url", EnvVars: []string{"RPC"}},
					&cli.StringFlag{Name: "key", Value: "", Usage: "buyer wallet private key hex", EnvVars: []string{"KEY"}},
					&cli.StringFlag{Name: "listing", Value: "", Usage: "listing id", EnvVars: []string{"LISTING"}},
				},
				Action: buy,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	m := seimart.New(
		c.String("db_dir"), c.String("mysql"), c.String("sqlite_dir"), c.Bool("use_sqlite"),
		c.String("rpc"), c.String("treasury_key"), c.Int64("chain_id"), c.String("network"),
		c.Bool("s3_flag"), c.String("s3_acc_key"), c.String("s3_secret_key"), c.String("s3_prefix"), c.String("s3_region"), c.String("s3_endpoint"),
		c.Bool("kafka_flag"), c.String("kafka_uri"),
		c.String("price_feed"),
	)
	m.Run(c.String("port"))

	<-signals
	m.Close()

	return nil
}

func buy(c *cli.Context) error {
	if c.String("listing") == "" {
		return fmt.Errorf("listing id can not be null")
	}
	if c.String("key") == "" {
		return fmt.Errorf("buyer key can not be null")
	}

	s, err := sdk.New(c.String("mart"), c.String("rpc"), c.String("key"))
	if err != nil {
		return err
	}
	att, err := s.Buy(context.Background(), c.String("listing"))
	if err != nil {
		if att != nil && att.TxHash != "" {
			return fmt.Errorf("%s (tx %s)", att.ErrMsg, att.TxHash)
		}
		return err
	}
	fmt.Printf("purchase complete: listing %s tx %s\n", att.ListingId, att.TxHash)
	return nil
}
