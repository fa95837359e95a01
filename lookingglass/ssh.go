package lookingglass

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/resolver"
)

const defaultBridgeCommand = "lgdig -g"

// sshTunnel runs the bridge command on a remote host and relays queries over
// the command's stdin/stdout. The ssh connection is dialed lazily on the first
// exchange and then shared; each exchange runs in its own session.
type sshTunnel struct {
	host     string // host:port
	user     string
	command  string
	insecure bool

	mu     sync.Mutex
	client *ssh.Client
}

func newSSHTunnel(u *url.URL, insecure bool) (*sshTunnel, error) {
	if len(u.Host) == 0 {
		return nil, fmt.Errorf("%w: ssh looking glass URL names no host",
			ErrUnsupportedTarget)
	}

	userName := u.User.Username()
	if len(userName) == 0 {
		if current, err := user.Current(); err == nil {
			userName = current.Username
		}
	}

	command := defaultBridgeCommand
	if len(u.Path) > 0 && u.Path != "/" {
		command = u.Path + " -g" // URL path overrides the remote binary
	}

	return &sshTunnel{
		host:     resolver.JoinPort(u.Host, "22"),
		user:     userName,
		command:  command,
		insecure: insecure,
	}, nil
}

func (t *sshTunnel) Exchange(ctx context.Context, c resolver.ExchangeConfig,
	q *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
	req, err := newRequest(c, q, server)
	if err != nil {
		return nil, 0, err
	}

	client, err := t.dial()
	if err != nil {
		return nil, 0, err
	}
	session, err := client.NewSession()
	if err != nil {
		return nil, 0, err
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return nil, 0, err
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		return nil, 0, err
	}
	if err = session.Start(t.command); err != nil {
		return nil, 0, err
	}

	start := time.Now()
	resp, err := roundTrip(stdin, stdout, req)
	stdin.Close()
	if err != nil {
		return nil, 0, err
	}
	r, err := unpackResponse(resp)
	if err != nil {
		return nil, 0, err
	}

	return r, time.Now().Sub(start), nil
}

// dial establishes the shared ssh connection on first use.
func (t *sshTunnel) dial() (*ssh.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}

	hostKeys, err := t.hostKeyCallback()
	if err != nil {
		return nil, err
	}
	cfg := &ssh.ClientConfig{
		User:            t.user,
		Auth:            agentAuth(),
		HostKeyCallback: hostKeys,
		Timeout:         10 * time.Second,
	}

	client, err := ssh.Dial("tcp", t.host, cfg)
	if err != nil {
		return nil, fmt.Errorf("ssh looking glass %s: %w", t.host, err)
	}
	t.client = client

	return client, nil
}

func (t *sshTunnel) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if t.insecure {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cb, err := knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
	if err != nil {
		return nil, fmt.Errorf("cannot verify ssh host keys (-k skips verification): %w", err)
	}

	return cb, nil
}

// agentAuth offers the running ssh-agent's keys, if there is one. An empty
// auth list simply fails at dial time with the server's rejection.
func agentAuth() []ssh.AuthMethod {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if len(sock) == 0 {
		return nil
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil
	}

	return []ssh.AuthMethod{ssh.PublicKeysCallback(agent.NewClient(conn).Signers)}
}

// Close drops the shared ssh connection if one was established.
func (t *sshTunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil

	return err
}
