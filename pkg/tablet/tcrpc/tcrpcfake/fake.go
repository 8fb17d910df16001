// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package tcrpcfake provides a scriptable, in-memory tcrpc.Proxy for
// exercising the bootstrap client's error handling deterministically
// (corrupt chunks, offset skew, remote failures) without a real network
// or a real server implementation, which is out of scope for this
// module (spec §1).
package tcrpcfake

import (
	"context"
	"sync"

	"github.com/zhdk123456/kudu/pkg/tablet/tcpb"
	"github.com/zhdk123456/kudu/pkg/tablet/tcrpc"
)

// Proxy is a scriptable tcrpc.Proxy.
type Proxy struct {
	mu sync.Mutex

	BeginSessionResp *tcpb.BeginSessionResponse
	BeginSessionErr  error

	// Chunks maps a data id key (see DataIDKey) to the ordered sequence
	// of chunk responses FetchData should return for that artifact, one
	// response per call.
	Chunks map[string][]FetchResult

	EndSessionErr error

	// EndSessionCalls records every EndSessionRequest received, so tests
	// can assert is_success and call count (spec §8 property: EndSession
	// is sent with is_success=true on a clean run).
	EndSessionCalls []tcpb.EndSessionRequest

	fetchCalls map[string]int
}

// FetchResult is one scripted FetchData outcome: either a response or
// an error, never both.
type FetchResult struct {
	Resp *tcpb.FetchDataResponse
	Err  error
}

// New returns an empty, ready-to-script fake.
func New() *Proxy {
	return &Proxy{
		Chunks:     map[string][]FetchResult{},
		fetchCalls: map[string]int{},
	}
}

var _ tcrpc.Proxy = (*Proxy)(nil)

// DataIDKey builds the map key used to script responses for a DataId.
func DataIDKey(id tcpb.DataId) string {
	if id.Type == tcpb.DataIdBlock {
		return "block:" + id.BlockID
	}
	return "wal:" + itoa(id.WALSegmentSeqno)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// BeginSession implements tcrpc.Proxy.
func (p *Proxy) BeginSession(
	ctx context.Context, req *tcpb.BeginSessionRequest,
) (*tcpb.BeginSessionResponse, error) {
	if p.BeginSessionErr != nil {
		return nil, p.BeginSessionErr
	}
	return p.BeginSessionResp, nil
}

// FetchData implements tcrpc.Proxy, replaying the scripted sequence for
// req.DataID in order.
func (p *Proxy) FetchData(
	ctx context.Context, req *tcpb.FetchDataRequest,
) (*tcpb.FetchDataResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := DataIDKey(req.DataID)
	idx := p.fetchCalls[key]
	p.fetchCalls[key] = idx + 1

	seq := p.Chunks[key]
	if idx >= len(seq) {
		return nil, errEOFScript
	}
	r := seq[idx]
	return r.Resp, r.Err
}

// EndSession implements tcrpc.Proxy.
func (p *Proxy) EndSession(
	ctx context.Context, req *tcpb.EndSessionRequest,
) (*tcpb.EndSessionResponse, error) {
	p.mu.Lock()
	p.EndSessionCalls = append(p.EndSessionCalls, *req)
	p.mu.Unlock()
	if p.EndSessionErr != nil {
		return nil, p.EndSessionErr
	}
	return &tcpb.EndSessionResponse{}, nil
}

// Close implements tcrpc.Proxy.
func (p *Proxy) Close() error { return nil }

type scriptExhaustedError struct{}

func (scriptExhaustedError) Error() string {
	return "tcrpcfake: no more scripted FetchData responses for this data id"
}

var errEOFScript = scriptExhaustedError{}
