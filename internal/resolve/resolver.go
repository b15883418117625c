package resolve

import (
	"context"
	"net"
)

// SRVRecord is one target of a service lookup.
type SRVRecord struct {
	Target   string
	Port     int
	Priority int
	Weight   int
}

// Resolver is the DNS collaborator used by the service resolver. It exists
// as an interface so that tests can substitute a fake without network access.
type Resolver interface {
	// LookupService resolves a discovery key as a service (SRV) record.
	LookupService(ctx context.Context, name string) ([]SRVRecord, error)

	// LookupAddress resolves a host name to its addresses. Callers use the
	// first address returned.
	LookupAddress(ctx context.Context, host string) ([]string, error)
}

// netResolver adapts net.Resolver to the Resolver interface.
type netResolver struct {
	r *net.Resolver
}

// NewNetResolver returns a Resolver backed by the standard library's
// net.Resolver.
func NewNetResolver() Resolver {
	return &netResolver{r: net.DefaultResolver}
}

func (n *netResolver) LookupService(ctx context.Context, name string) ([]SRVRecord, error) {
	// With empty service and proto the name is looked up as-is, so keys can
	// be full SRV names like _redis._tcp.cache.svc as well as bare names.
	_, srvs, err := n.r.LookupSRV(ctx, "", "", name)
	if err != nil {
		return nil, err
	}

	records := make([]SRVRecord, 0, len(srvs))
	for _, srv := range srvs {
		records = append(records, SRVRecord{
			Target:   srv.Target,
			Port:     int(srv.Port),
			Priority: int(srv.Priority),
			Weight:   int(srv.Weight),
		})
	}
	return records, nil
}

func (n *netResolver) LookupAddress(ctx context.Context, host string) ([]string, error) {
	return n.r.LookupHost(ctx, host)
}
