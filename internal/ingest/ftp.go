package ingest

import (
	"fmt"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPClient pulls bulk climate CSVs from the weather bureau's anonymous FTP
// drop. The bureau publishes one consolidated CSV per station.
type FTPClient struct {
	host string
	path string
}

func NewFTPClient(host, remotePath string) *FTPClient {
	return &FTPClient{host: host, path: remotePath}
}

// Fetch retrieves and parses the remote climate CSV. The remote file name is
// recorded as the source file on every reading.
func (c *FTPClient) Fetch() (*ClimateResult, error) {
	conn, err := ftp.Dial(c.host, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(c.path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	result, err := ParseClimateCSV(resp, path.Base(c.path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.path, err)
	}
	return result, nil
}
