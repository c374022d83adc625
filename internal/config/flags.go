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

// ParseFlags parses configuration flags from args.
//
// Flags:
//
//	-a authority address used by the client (e.g. localhost:8080)
//	-listen authority listen address in format [host]:[port]
//	-d storage driver (sqlite, badger, file, memory)
//	-p storage path
//	-debounce standard debounce window (e.g. "3s")
//	-deferred-debounce deferred debounce window (e.g. "6s")
//	-no-flush-on-switch keep outgoing edits local when switching documents
//	-retry-interval automatic sync retry interval (e.g. "30s")
//	-request-timeout outbound request timeout (e.g. "15s")
//	-server-timeout inbound request timeout of the authority
//	-log client log file path
//	-c/-config json file path with configs
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)

	var listenAddress NetAddress
	var adapterAddress string
	var storageDriver, storagePath string
	var debounce, deferredDebounce time.Duration
	var noFlushOnSwitch bool
	var retryInterval, requestTimeout, serverTimeout time.Duration
	var logPath string
	var jsonConfigPath string

	fs.StringVar(&adapterAddress, "a", "", "Authority address")
	fs.Var(&listenAddress, "listen", "Authority listen address host:port")
	fs.StringVar(&storageDriver, "d", "", "Storage driver (sqlite, badger, file, memory)")
	fs.StringVar(&storagePath, "p", "", "Storage path")
	fs.DurationVar(&debounce, "debounce", 0, "Standard debounce window (e.g., 3s)")
	fs.DurationVar(&deferredDebounce, "deferred-debounce", 0, "Deferred debounce window (e.g., 6s)")
	fs.BoolVar(&noFlushOnSwitch, "no-flush-on-switch", false, "Do not sync the outgoing session on document switch")
	fs.DurationVar(&retryInterval, "retry-interval", 0, "Automatic sync retry interval (e.g., 30s)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g., 15s)")
	fs.DurationVar(&serverTimeout, "server-timeout", 0, "Inbound request timeout (e.g., 15s)")
	fs.StringVar(&logPath, "log", "", "Client log file path")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		Editor: Editor{
			DebounceWindow:  debounce,
			DeferredWindow:  deferredDebounce,
			NoFlushOnSwitch: noFlushOnSwitch,
		},
		Storage: Storage{
			Driver: storageDriver,
			Path:   storagePath,
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress,
			RequestTimeout: requestTimeout,
		},
		Server: Server{
			HTTPAddress:    listenAddress.String(),
			RequestTimeout: serverTimeout,
		},
		Workers:      Workers{RetryInterval: retryInterval},
		Log:          Log{Path: logPath},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string when neither part is set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range and checks IP correctness unless host is
// "localhost" or empty (all interfaces).
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

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
