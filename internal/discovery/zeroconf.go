package discovery

import "github.com/grandcat/zeroconf"

func zeroconfRegister(instance, service, domain string, port int, text []string) (registration, error) {
	server, err := zeroconf.Register(instance, service, domain, port, text, nil)
	if err != nil {
		return nil, err
	}
	return server, nil
}
