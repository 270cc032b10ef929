// trustpub verifies OIDC identity tokens from trusted publishers and
// resolves them to registered trust relationships.
package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gomodule/redigo/redis"
	"github.com/justinas/alice"
	log "github.com/sirupsen/logrus"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/httpx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"

	"github.com/trustpub/trustpub/handler"
	"github.com/trustpub/trustpub/keystore"
	"github.com/trustpub/trustpub/oidc"
	"github.com/trustpub/trustpub/providers"
	"github.com/trustpub/trustpub/report"
	"github.com/trustpub/trustpub/static"
)

var (
	listenPort      string
	redisAddr       string
	providersConfig string
	providerID      string
	issuerURL       string
	audience        string
	sentryDSN       string
	allowInsecure   bool
)

func init() {
	flag.StringVar(&listenPort, "port", "8080", "Port to listen on for verification requests")
	flag.StringVar(&redisAddr, "redis-address", "localhost:6379", "Address of the Redis keyset cache")
	flag.StringVar(&providersConfig, "providers-config", "providers.yaml", "Registered provider configuration file")
	flag.StringVar(&providerID, "provider-id", "github", "Identifier of the provider class served by this instance")
	flag.StringVar(&issuerURL, "issuer", providers.GitHubIssuer, "Issuer URL of the provider class")
	flag.StringVar(&audience, "audience", static.AudienceTrustpub, "Audience value expected in identity tokens")
	flag.StringVar(&sentryDSN, "sentry-dsn", "", "Sentry DSN for anomaly reports (optional)")
	flag.BoolVar(&allowInsecure, "allow-insecure", false, "Serve the signature-skipping development service")
}

var mainCtx, mainCancel = context.WithCancel(context.Background())

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")

	pool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 2 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", redisAddr)
		},
	}
	rtx.Must(pingRedis(pool), "Could not reach the Redis keyset cache")

	registry, err := providers.ParseConfig(providersConfig)
	rtx.Must(err, "Could not parse the provider configuration")

	var reporter report.Reporter = &report.LogReporter{}
	if sentryDSN != "" {
		reporter, err = report.NewSentry(sentryDSN)
		rtx.Must(err, "Could not initialize Sentry")
	}

	var service handler.TokenService = oidc.New(
		providerID, issuerURL, audience, keystore.NewClient(pool), registry, reporter)
	if allowInsecure {
		// NewInsecure refuses unless the environment explicitly
		// permits it.
		insecure, err := oidc.NewInsecure(issuerURL, audience, registry)
		rtx.Must(err, "Insecure mode requested but not permitted by the environment")
		service = insecure
	}

	prom := prometheusx.MustServeMetrics()
	defer prom.Close()

	c := handler.NewClient(service)
	chain := alice.New(handler.AccessLog)
	mux := http.NewServeMux()
	// Automated publishers present identity tokens for verification.
	mux.Handle("/v1/publish/verify", chain.Then(http.HandlerFunc(c.VerifyPublish)))

	srv := &http.Server{
		Addr:    ":" + listenPort,
		Handler: mux,
	}
	log.Info("Listening for verification requests on " + listenPort)
	rtx.Must(httpx.ListenAndServeAsync(srv), "Could not start server")
	defer srv.Close()
	<-mainCtx.Done()
}

// pingRedis waits for the keyset cache to answer a PING, backing off
// between attempts so a fresh deploy does not race its cache.
func pingRedis(pool *redis.Pool) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = static.BackoffInitialInterval
	b.MaxInterval = static.BackoffMaxInterval
	b.MaxElapsedTime = static.BackoffMaxElapsedTime
	return backoff.Retry(func() error {
		conn := pool.Get()
		defer conn.Close()
		_, err := conn.Do("PING")
		return err
	}, b)
}
