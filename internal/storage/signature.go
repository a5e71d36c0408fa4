package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/user/assetview/internal/model"
)

func digest(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Sign returns a copy of a with signatures filled in for the asset and each of
// its IPs and ports. The asset signature covers host, comment and owner.
func Sign(a model.Asset) model.Asset {
	out := a
	out.Signature = digest(a.Host + a.Comment + a.Owner)

	out.IPs = make([]model.IP, len(a.IPs))
	for i, ip := range a.IPs {
		ip.Signature = digest(ip.Address)
		out.IPs[i] = ip
	}

	out.Ports = make([]model.Port, len(a.Ports))
	for i, p := range a.Ports {
		p.Signature = digest(strconv.Itoa(p.Port))
		out.Ports[i] = p
	}
	return out
}
