package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/newtron-network/newtcheck/pkg/command"
	"github.com/newtron-network/newtcheck/pkg/util"
	"github.com/newtron-network/newtcheck/pkg/version"
)

// DefaultTimeout bounds dialing and each command when SSHConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// SSHConfig describes how to reach one device over SSH.
type SSHConfig struct {
	Name     string
	Host     string
	Port     int
	Username string
	Password string
	Kind     Kind

	// HardwareModel overrides discovery when set.
	HardwareModel string

	// Timeout bounds the dial and every command.
	Timeout time.Duration
}

func (c SSHConfig) addr() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c SSHConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// SSH is a CLI device reached over SSH. The connection is opened on the
// first Execute and reused; each command runs in its own session. Batches
// are serialized.
type SSH struct {
	cfg SSHConfig
	log *logrus.Entry

	mu     sync.Mutex
	client *ssh.Client
	model  string
}

// NewSSH creates an SSH device. No connection is made until Execute or Connect.
func NewSSH(cfg SSHConfig, log *logrus.Entry) (*SSH, error) {
	if cfg.Name == "" {
		cfg.Name = cfg.Host
	}
	if cfg.Host == "" {
		return nil, util.NewConfigError("", "device %q has no host", cfg.Name)
	}
	if cfg.Kind == "" {
		cfg.Kind = KindEOS
	}
	if log == nil {
		log = util.Discard()
	}
	return &SSH{
		cfg:   cfg,
		log:   log.WithField("device", cfg.Name),
		model: cfg.HardwareModel,
	}, nil
}

func (d *SSH) Name() string { return d.cfg.Name }
func (d *SSH) Host() string { return d.cfg.Host }
func (d *SSH) Kind() Kind   { return d.cfg.Kind }

// HardwareModel returns the configured or discovered model. Discovery runs
// when the connection opens, so it is empty before the first Execute.
func (d *SSH) HardwareModel() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model
}

// Connect opens the SSH connection and discovers the hardware model.
func (d *SSH) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connectLocked(ctx)
}

func (d *SSH) connectLocked(ctx context.Context) error {
	if d.client != nil {
		return nil
	}
	config := &ssh.ClientConfig{
		User: d.cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(d.cfg.Password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = d.cfg.Password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		ClientVersion:   version.UserAgent(),
		Timeout:         d.cfg.timeout(),
	}

	dialer := net.Dialer{Timeout: d.cfg.timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", d.cfg.addr())
	if err != nil {
		return fmt.Errorf("SSH dial %s: %w", d.cfg.addr(), err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, d.cfg.addr(), config)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SSH handshake %s: %w", d.cfg.addr(), err)
	}
	d.client = ssh.NewClient(c, chans, reqs)
	d.log.WithField("addr", d.cfg.addr()).Debug("connected")

	if d.model == "" {
		model, err := d.discoverModel(ctx)
		if err != nil {
			// Platform guards see an empty model and let the check run.
			d.log.WithError(err).Warn("hardware model discovery failed")
		}
		d.model = model
	}
	return nil
}

// Close closes the SSH connection. The device reconnects on the next Execute.
func (d *SSH) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

// Execute runs each command in its own session, in order. A connection
// failure fails every command and the batch.
func (d *SSH) Execute(ctx context.Context, cmds []*command.Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.connectLocked(ctx); err != nil {
		for _, c := range cmds {
			_ = c.Fail(util.NewCollectionError(d.cfg.Name, c.Text, errors.Join(util.ErrNotConnected, err)))
		}
		return err
	}

	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			_ = c.Fail(util.NewCollectionError(d.cfg.Name, c.Text, err))
			continue
		}
		wire := d.cfg.Kind.wire(c)
		start := time.Now()
		out, err := d.run(ctx, wire)
		d.log.WithFields(logrus.Fields{
			"command": wire,
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Debug("command executed")
		if err != nil {
			_ = c.Fail(util.NewCollectionError(d.cfg.Name, c.Text, err))
			continue
		}
		if err := fill(c, out); err != nil {
			_ = c.Fail(util.NewCollectionError(d.cfg.Name, c.Text, err))
		}
	}
	return nil
}

// run executes one command in a fresh session, bounded by ctx and the
// configured timeout.
func (d *SSH) run(ctx context.Context, cmd string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.timeout())
	defer cancel()

	session, err := d.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	type reply struct {
		out []byte
		err error
	}
	done := make(chan reply, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- reply{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return string(r.out), fmt.Errorf("SSH exec '%s': %w: %s", cmd, r.err, strings.TrimSpace(string(r.out)))
		}
		return string(r.out), nil
	case <-ctx.Done():
		session.Close()
		return "", ctx.Err()
	}
}

// discoverModel asks the device for its hardware model: "show version" on
// EOS, CONFIG_DB DEVICE_METADATA on SONiC.
func (d *SSH) discoverModel(ctx context.Context) (string, error) {
	switch d.cfg.Kind {
	case KindSONiC:
		tunnel, err := NewSSHTunnel(d.client, RedisAddr)
		if err != nil {
			return "", err
		}
		defer tunnel.Close()

		meta := NewMetadataClient(tunnel.LocalAddr())
		defer meta.Close()
		md, err := meta.Get(ctx)
		if err != nil {
			return "", err
		}
		return md.Model(), nil
	default:
		out, err := d.run(ctx, KindEOS.wire(command.New("show version", command.FormatJSON)))
		if err != nil {
			return "", err
		}
		return parseEOSModel(out)
	}
}

func parseEOSModel(out string) (string, error) {
	var version struct {
		ModelName string `json:"modelName"`
	}
	if err := json.Unmarshal([]byte(out), &version); err != nil {
		return "", fmt.Errorf("parsing show version: %w", err)
	}
	if version.ModelName == "" {
		return "", fmt.Errorf("show version: %w", util.ErrNotFound)
	}
	return version.ModelName, nil
}
