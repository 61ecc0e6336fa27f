/**
 * Copyright (c) 2025 Peking University and Peking University
 * Changsha Institute for Computing and Digital Economy
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package remote runs commands on the cluster head node over SSH. It is
// the only package that touches the network: one session owns one
// connection, runs commands strictly sequentially and is closed by the
// caller when done.
package remote

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	osuser "os/user"
	"strconv"
	"strings"

	"CondorFrontEnd/internal/util"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Session is a connected SSH session. Obtain one through Dial; a Session
// value is always usable until Close is called.
type Session struct {
	client *ssh.Client
	user   string
	host   string
	output io.Writer
}

// ExecError reports a remote command that wrote to its standard error
// stream. The command's stdout lines are still returned alongside it.
type ExecError struct {
	Command string
	Stderr  []string
}

func (e *ExecError) Error() string {
	if len(e.Stderr) > 0 {
		return fmt.Sprintf("remote command failed: %s", strings.Join(e.Stderr, "; "))
	}
	return "remote command failed"
}

// Dial connects and authenticates to the cluster head node. Key-based
// authentication is attempted first; if the key is rejected, the operator
// is prompted for a password. Either the returned session is fully
// connected or an error is returned, never something in between.
func Dial(cfg *util.ClusterConfig) (*Session, error) {
	user := cfg.User
	if user == "" {
		u, err := osuser.Current()
		if err != nil {
			return nil, fmt.Errorf("cannot determine login user: %w", err)
		}
		user = u.Username
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))

	hostKeyCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	if signer := loadSigner(cfg.KeyFile); signer != nil {
		client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeyCallback,
		})
		if err == nil {
			log.Debugf("Authenticated to %s with key %s.", addr, cfg.KeyFile)
			return &Session{client: client, user: user, host: cfg.Host, output: os.Stdout}, nil
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return nil, fmt.Errorf("cannot reach %s: %w", addr, err)
		}
		log.Debugf("Key authentication to %s failed: %v.", addr, err)
	}

	password, err := util.ReadPassword(fmt.Sprintf("%s@%s's password: ", user, cfg.Host))
	if err != nil {
		return nil, fmt.Errorf("key authentication failed and no password available: %w", err)
	}

	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: hostKeyCallback,
	})
	if err != nil {
		return nil, fmt.Errorf("authentication to %s failed: %w", addr, err)
	}

	return &Session{client: client, user: user, host: cfg.Host, output: os.Stdout}, nil
}

// SetOutput redirects the mirrored remote output, which goes to stdout
// by default.
func (s *Session) SetOutput(w io.Writer) {
	s.output = w
}

// Remote returns user@host for log and error messages.
func (s *Session) Remote() string {
	return s.user + "@" + s.host
}

// Execute runs one command on the remote host and blocks until it
// finishes. It returns the stdout lines; if the command wrote anything
// to stderr, it additionally returns an *ExecError carrying those lines.
// Both streams are mirrored to the session output. A non-zero exit
// status alone is not treated as failure: the scheduler tools report
// their problems on stderr.
func (s *Session) Execute(cmd string) ([]string, error) {
	if s.client == nil {
		return nil, errors.New("session is closed")
	}

	sess, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("cannot open channel to %s: %w", s.host, err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	log.Debugf("Executing on %s: %s", s.host, cmd)
	if err := sess.Run(cmd); err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("remote execution on %s failed: %w", s.host, err)
		}
	}

	outLines := SplitLines(stdout.String())
	errLines := SplitLines(stderr.String())
	for _, line := range outLines {
		fmt.Fprintln(s.output, line)
	}
	for _, line := range errLines {
		fmt.Fprintln(s.output, line)
	}

	if len(errLines) > 0 {
		return outLines, &ExecError{Command: cmd, Stderr: errLines}
	}
	return outLines, nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// SplitLines splits captured stream text into lines, dropping the
// trailing empty line and any carriage returns.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func hostKeyCallback(cfg *util.ClusterConfig) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		log.Warnf("Host key verification is disabled for %s.", cfg.Host)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if cfg.KnownHosts == "" {
		return nil, &util.CondorError{
			Code:    util.ErrorConfig,
			Message: "Strict host key checking requires a known_hosts path.",
		}
	}
	callback, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, &util.CondorError{
			Code:    util.ErrorConfig,
			Message: fmt.Sprintf("Cannot load known hosts %s: %v.", cfg.KnownHosts, err),
		}
	}
	return callback, nil
}

func loadSigner(path string) ssh.Signer {
	if path == "" {
		return nil
	}
	key, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("Cannot read private key %s: %v.", path, err)
		return nil
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		log.Debugf("Cannot parse private key %s: %v.", path, err)
		return nil
	}
	return signer
}
