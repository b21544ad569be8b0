package output

import (
	"bufio"
	"os"
	"strconv"
	"sync"
	"time"

	"logrelay/pkg/model"
	"logrelay/pkg/syslog"
)

// ConsoleDispatcher writes dispatched entries to stdout, one
// "facility.severity identifier: KEY=value ..." summary line per message.
// It is the default host wiring for the external dispatch collaborator.
type ConsoleDispatcher struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func NewConsoleDispatcher() *ConsoleDispatcher {
	return &ConsoleDispatcher{
		w: bufio.NewWriter(os.Stdout),
	}
}

func (c *ConsoleDispatcher) Dispatch(fields []string, creds *model.Credentials, ts time.Time, label string, priority int, flags int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.w.WriteString(syslog.FacilityName((priority & syslog.FacilityMask) >> 3))
	c.w.WriteByte('.')
	c.w.WriteString(syslog.SeverityName(priority & syslog.SeverityMask))
	if creds != nil {
		c.w.WriteString(" pid=")
		c.w.WriteString(strconv.Itoa(int(creds.PID)))
	}
	for _, f := range fields {
		c.w.WriteByte(' ')
		c.w.WriteString(f)
	}
	c.w.WriteByte('\n')
	c.w.Flush()
}
