package device

import (
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

// RedisAddr is where SONiC's redis listens inside the device.
const RedisAddr = "127.0.0.1:6379"

// SSHTunnel forwards a local TCP port to an address reachable from the SSH
// host. SONiC redis is not exposed off-box, so metadata lookups go through it.
type SSHTunnel struct {
	localAddr  string
	remoteAddr string
	client     *ssh.Client
	listener   net.Listener
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewSSHTunnel opens a local listener on a random port whose connections are
// forwarded to remote over client. The tunnel does not own client.
func NewSSHTunnel(client *ssh.Client, remote string) (*SSHTunnel, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &SSHTunnel{
		localAddr:  listener.Addr().String(),
		remoteAddr: remote,
		client:     client,
		listener:   listener,
		done:       make(chan struct{}),
	}

	t.wg.Add(1)
	go t.acceptLoop()

	return t, nil
}

// LocalAddr returns the local end of the tunnel, e.g. "127.0.0.1:54321".
func (t *SSHTunnel) LocalAddr() string {
	return t.localAddr
}

// Close stops accepting and waits for open forwards to drain.
func (t *SSHTunnel) Close() error {
	close(t.done)
	err := t.listener.Close()
	t.wg.Wait()
	return err
}

func (t *SSHTunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *SSHTunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.client.Dial("tcp", t.remoteAddr)
	if err != nil {
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	select {
	case <-done:
	case <-t.done:
	}
}
