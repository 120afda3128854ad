// Package discovery resolves a bootstrap peer list from a DNS TXT
// record, grounded on announce/nodeslookup.go and announce/setup.go's
// nodesDomain convention: a single fully-qualified domain whose TXT
// records each carry one dialable peer address, re-fetched on the
// domain's own SOA refresh interval rather than a fixed timer.
package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/background"
	"github.com/bitmark-inc/peerlog/transport"
	"github.com/bitmark-inc/peerlog/util"
)

// defaultInterval is used whenever the SOA lookup that would normally
// pace re-fetches fails (no resolv.conf, no reachable nameserver, ...).
const defaultInterval = time.Hour

// LookupFunc matches net.LookupTXT's signature so tests can substitute
// a fixed record set without a real DNS query.
type LookupFunc func(name string) ([]string, error)

// Bootstrap is a background.Process that keeps dialing the peer
// addresses published under Domain's TXT record.
type Bootstrap struct {
	log *logger.L

	domain    string
	transport transport.Transport
	lookup    LookupFunc
	dialed    map[string]bool
}

// New - a Bootstrap for domain, using net.LookupTXT; pass through a
// non-nil transport once it's been constructed.
func New(name, domain string, t transport.Transport) *Bootstrap {
	return &Bootstrap{
		log:       logger.New(name),
		domain:    domain,
		transport: t,
		lookup:    net.LookupTXT,
		dialed:    make(map[string]bool),
	}
}

// Run - periodic TXT lookup and dial-if-new loop; satisfies
// background.Process so it can be started alongside the node's other
// background workers via background.Start.
func (b *Bootstrap) Run(args interface{}, shutdown <-chan struct{}) {
	if "" == b.domain {
		return
	}

	b.resolveAndDial()

	timer := time.NewTimer(b.refreshInterval())
	defer timer.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-timer.C:
			b.resolveAndDial()
			timer.Reset(b.refreshInterval())
		}
	}
}

func (b *Bootstrap) resolveAndDial() {
	addrs, err := b.lookup(b.domain)
	if nil != err {
		util.LogError(b.log, util.CoRed, fmt.Sprintf("TXT lookup for %s failed: %s", b.domain, err))
		return
	}

	for _, addr := range addrs {
		if b.dialed[addr] {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := b.transport.Dial(ctx, addr)
		cancel()
		if nil != err {
			util.LogWarn(b.log, util.CoRed, fmt.Sprintf("dial bootstrap address %s failed: %s", addr, err))
			continue
		}
		util.LogInfo(b.log, util.CoGreen, fmt.Sprintf("dialed bootstrap address %s", addr))
		b.dialed[addr] = true
	}
}

// refreshInterval mirrors announce/nodeslookup.go's getIntervalTime:
// reads the first nameserver out of /etc/resolv.conf and asks it for
// the domain's SOA record, using the SOA's own refresh field as the
// next poll interval instead of a value this package would otherwise
// have to guess at.
func (b *Bootstrap) refreshInterval() time.Duration {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if nil != err || 0 == len(conf.Servers) {
		return defaultInterval
	}

	server := net.JoinHostPort(conf.Servers[0], conf.Port)
	client := dns.Client{}
	msg := dns.Msg{}
	msg.SetQuestion(dns.Fqdn(b.domain), dns.TypeSOA)

	reply, _, err := client.Exchange(&msg, server)
	if nil != err || nil == reply {
		return defaultInterval
	}

	for _, rr := range reply.Answer {
		if soa, ok := rr.(*dns.SOA); ok {
			return time.Duration(soa.Refresh) * time.Second
		}
	}
	return defaultInterval
}

var _ background.Process = (*Bootstrap)(nil)
