package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "168h", "30m")
//	-otp-lifetime one-time code lifetime (e.g., "10m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-allowed-origin origin allowed for browser calls
//	-rate-limit-rpm per-client requests per minute
//	-mail-host / -mail-port / -mail-username / -mail-password / -mail-from SMTP settings
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var otpLifetime time.Duration
	var requestTimeout time.Duration
	var allowedOrigin string
	var rateLimitRPM int
	var mailHost, mailUsername, mailPassword, mailFrom string
	var mailPort int

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 168h, 30m)")
	flag.DurationVar(&otpLifetime, "otp-lifetime", 0, "One-time code lifetime (e.g., 10m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&allowedOrigin, "allowed-origin", "", "Origin allowed for browser calls")
	flag.IntVar(&rateLimitRPM, "rate-limit-rpm", 0, "Per-client requests per minute")
	flag.StringVar(&mailHost, "mail-host", "", "SMTP server host")
	flag.IntVar(&mailPort, "mail-port", 0, "SMTP server port")
	flag.StringVar(&mailUsername, "mail-username", "", "SMTP user")
	flag.StringVar(&mailPassword, "mail-password", "", "SMTP password")
	flag.StringVar(&mailFrom, "mail-from", "", "Sender address for outbound mail")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
			OTPLifetime:   otpLifetime,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
			AllowedOrigin:  allowedOrigin,
			RateLimitRPM:   rateLimitRPM,
		},
		Mail: Mail{
			Host:     mailHost,
			Port:     mailPort,
			Username: mailUsername,
			Password: mailPassword,
			From:     mailFrom,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
