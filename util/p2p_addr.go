package util

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	peerlib "github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

var (
	errInvalidPortNumber = errors.New("invalid port number")
	errNoAddress         = errors.New("no address")
	errAddrInfoNil       = errors.New("addrinfo is nil")
)

// IDCompare - result is 0 if a==b, -1 if a < b, and +1 if a > b
func IDCompare(ida, idb peerlib.ID) int {
	return strings.Compare(ida.String(), idb.String())
}

// IDEqual - true if two peer ids are equal
func IDEqual(ida, idb peerlib.ID) bool {
	return ida.String() == idb.String()
}

// ParseHostPort - parse host:port, return version(ip4/ip6), ip, port, error
func ParseHostPort(hostPort string) (string, string, string, error) {
	host, port, err := net.SplitHostPort(hostPort)
	if nil != err {
		return "", "", "", err
	}
	ip := strings.Trim(host, " ")
	numericPort, err := strconv.Atoi(strings.Trim(port, " "))
	if nil != err {
		return "", "", "", err
	}
	if numericPort < 1 || numericPort > 65535 {
		return "", "", "", errInvalidPortNumber
	}
	netIP := net.ParseIP(ip)
	var ver string
	if nil != netIP.To4() {
		ver = "ip4"
	} else {
		ver = "ip6"
	}
	return ver, ip, strconv.Itoa(numericPort), nil
}

// IPPortToMultiAddr - generate multiaddrs from a list of "host:port" strings
func IPPortToMultiAddr(addrsStr []string) []ma.Multiaddr {
	var maAddrs []ma.Multiaddr
loop:
	for _, IPPort := range addrsStr {
		ver, ip, port, err := ParseHostPort(IPPort)
		if err != nil {
			continue loop
		}
		addr, err := ma.NewMultiaddr(fmt.Sprintf("/%s/%s/tcp/%s", ver, ip, port))
		if err != nil {
			continue loop
		}
		maAddrs = append(maAddrs, addr)
	}
	return maAddrs
}

// DualStackAddrToIPV4IPV6 - expand "*:port" wildcards into 0.0.0.0:port and
// [::]:port, merging duplicates
func DualStackAddrToIPV4IPV6(ipPorts []string) (iPPorts []string) {
	uniqIPs := make(map[string]bool)
	for _, ipPort := range ipPorts {
		sep := strings.Split(ipPort, ":")
		if len(sep) == 2 && "*" == sep[0] {
			uniqIPs["0.0.0.0:"+sep[1]] = true
			uniqIPs["[::]:"+sep[1]] = true
		} else {
			uniqIPs[ipPort] = true
		}
	}
	for key := range uniqIPs {
		iPPorts = append(iPPorts, key)
	}
	return
}

// MaAddrToAddrInfo - convert a multiaddr (with a /p2p/<id> suffix) to a peer.AddrInfo
func MaAddrToAddrInfo(maAddr ma.Multiaddr) (*peerlib.AddrInfo, error) {
	info, err := peerlib.AddrInfoFromP2pAddr(maAddr)
	if err != nil {
		return nil, err
	}
	if nil == info {
		return nil, errAddrInfoNil
	}
	return info, nil
}

// MaAddrsToAddrInfos - convert multiaddrs to peer.AddrInfo values
func MaAddrsToAddrInfos(maAddrs []ma.Multiaddr) ([]peerlib.AddrInfo, error) {
	if len(maAddrs) < 1 {
		return nil, errNoAddress
	}
	infos, err := peerlib.AddrInfosFromP2pAddrs(maAddrs...)
	if err != nil {
		return nil, err
	}
	if nil == infos {
		return nil, errAddrInfoNil
	}
	return infos, nil
}

// GetMultiAddrsFromBytes - decode a list of raw multiaddr bytes
func GetMultiAddrsFromBytes(addrs [][]byte) []ma.Multiaddr {
	var maAddrs []ma.Multiaddr
	for _, addr := range addrs {
		maAddr, err := ma.NewMultiaddrBytes(addr)
		if nil == err {
			maAddrs = append(maAddrs, maAddr)
		}
	}
	return maAddrs
}

// GetBytesFromMultiaddr - encode multiaddrs to raw bytes
func GetBytesFromMultiaddr(addrs []ma.Multiaddr) [][]byte {
	var byteAddrs [][]byte
	for _, addr := range addrs {
		byteAddrs = append(byteAddrs, addr.Bytes())
	}
	return byteAddrs
}

// MaAddrToString - render multiaddrs as strings
func MaAddrToString(maAddrs []ma.Multiaddr) []string {
	var addrsStr []string
	for _, addr := range maAddrs {
		addrsStr = append(addrsStr, addr.String())
	}
	return addrsStr
}

// IsMultiAddrIPV4 - true if the multiaddr has an ip4 component
func IsMultiAddrIPV4(addr ma.Multiaddr) bool {
	for _, protocol := range addr.Protocols() {
		if protocol.Name == "ip4" {
			return true
		}
	}
	return false
}

// IsMultiAddrIPV6 - true if the multiaddr has an ip6 component
func IsMultiAddrIPV6(addr ma.Multiaddr) bool {
	for _, protocol := range addr.Protocols() {
		if protocol.Name == "ip6" {
			return true
		}
	}
	return false
}

// PrintMaAddrs - render multiaddrs one per line
func PrintMaAddrs(addrs []ma.Multiaddr) string {
	var stringAddr string
	for _, addr := range addrs {
		stringAddr = fmt.Sprintf("%s%s\n", stringAddr, addr.String())
	}
	return stringAddr
}
