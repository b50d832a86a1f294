// Package membership provides a purely informational cluster-presence
// advertiser built on memberlist's gossip transport. It lets operators see
// which sequencer candidates are alive and what their allocator state looks
// like; it is never consulted by the allocator itself and has no say in who
// currently holds the lease.
package membership

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/memberlist"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/allocator"
	"github.com/ordinate-io/sequencer/internal/model"
)

// Config holds the gossip transport settings for the advertiser.
type Config struct {
	NodeID         string
	BindAddr       string
	BindPort       int
	SeedNodes      []string
	GossipInterval time.Duration
	ProbeTimeout   time.Duration
	ProbeInterval  time.Duration
}

// Advertiser broadcasts this node's health snapshot over memberlist and logs
// what it hears from the rest of the cluster. Nothing it observes feeds back
// into token issuance.
type Advertiser struct {
	config    Config
	list      *memberlist.Memberlist
	allocator *allocator.Allocator
	logger    *zap.Logger

	snapshot model.HealthStatus
}

// New creates an Advertiser and joins the memberlist cluster. The returned
// Advertiser is ready to gossip immediately; Shutdown leaves the cluster.
func New(cfg Config, alloc *allocator.Allocator, logger *zap.Logger) (*Advertiser, error) {
	adv := &Advertiser{
		config:    cfg,
		allocator: alloc,
		logger:    logger,
		snapshot:  model.HealthStatus{NodeID: cfg.NodeID, Status: model.NodeStatusHealthy},
	}

	mlConfig := memberlist.DefaultLocalConfig()
	mlConfig.Name = cfg.NodeID
	if cfg.BindAddr != "" {
		mlConfig.BindAddr = cfg.BindAddr
	}
	if cfg.BindPort != 0 {
		mlConfig.BindPort = cfg.BindPort
		mlConfig.AdvertisePort = cfg.BindPort
	}
	if cfg.GossipInterval > 0 {
		mlConfig.GossipInterval = cfg.GossipInterval
	}
	if cfg.ProbeTimeout > 0 {
		mlConfig.ProbeTimeout = cfg.ProbeTimeout
	}
	if cfg.ProbeInterval > 0 {
		mlConfig.ProbeInterval = cfg.ProbeInterval
	}
	mlConfig.Delegate = adv
	mlConfig.Events = &eventDelegate{advertiser: adv}
	mlConfig.LogOutput = nil

	list, err := memberlist.Create(mlConfig)
	if err != nil {
		return nil, fmt.Errorf("membership: failed to create memberlist: %w", err)
	}
	adv.list = list

	if len(cfg.SeedNodes) > 0 {
		if _, err := list.Join(cfg.SeedNodes); err != nil {
			logger.Warn("membership: failed to join seed nodes on startup, will rely on later gossip",
				zap.Strings("seeds", cfg.SeedNodes), zap.Error(err))
		}
	}

	return adv, nil
}

// RefreshSnapshot recomputes this node's health snapshot from the live
// allocator state. Call it right before the gossip layer asks for node
// metadata or local state so advertised figures are not stale.
func (a *Advertiser) RefreshSnapshot(status model.NodeStatus) {
	a.snapshot = model.HealthStatus{
		NodeID:    a.config.NodeID,
		Status:    status,
		Timestamp: a.snapshot.Timestamp,
		Metrics: model.HealthMetrics{
			GlobalTail: a.allocator.GlobalTail(),
		},
	}
}

// Members returns the names of all nodes currently visible in the gossip
// view, including this one.
func (a *Advertiser) Members() []string {
	names := make([]string, 0)
	for _, m := range a.list.Members() {
		names = append(names, m.Name)
	}
	return names
}

// Shutdown leaves the memberlist cluster and releases its transport.
func (a *Advertiser) Shutdown() error {
	if a.list == nil {
		return nil
	}
	if err := a.list.Leave(5 * time.Second); err != nil {
		a.logger.Warn("membership: error leaving cluster", zap.Error(err))
	}
	return a.list.Shutdown()
}

// NodeMeta implements memberlist.Delegate. It is attached to every gossip
// message about this node, so it is kept small: just enough to tell a
// dashboard whether this candidate looks alive and where its tail is.
func (a *Advertiser) NodeMeta(limit int) []byte {
	data, err := json.Marshal(a.snapshot)
	if err != nil {
		return nil
	}
	if len(data) > limit {
		return data[:limit]
	}
	return data
}

// NotifyMsg implements memberlist.Delegate. User messages are not used by
// this advertiser; anything received is just logged at debug level.
func (a *Advertiser) NotifyMsg(data []byte) {
	var status model.HealthStatus
	if err := json.Unmarshal(data, &status); err != nil {
		a.logger.Debug("membership: received unparseable message", zap.Error(err))
		return
	}
	a.logger.Debug("membership: received status message",
		zap.String("from_node", status.NodeID), zap.String("status", string(status.Status)))
}

// GetBroadcasts implements memberlist.Delegate. This advertiser has nothing
// to proactively broadcast outside of the periodic push/pull exchange.
func (a *Advertiser) GetBroadcasts(overhead, limit int) [][]byte {
	return nil
}

// LocalState implements memberlist.Delegate, exchanged during the periodic
// push/pull sync.
func (a *Advertiser) LocalState(join bool) []byte {
	data, err := json.Marshal(a.snapshot)
	if err != nil {
		return nil
	}
	return data
}

// MergeRemoteState implements memberlist.Delegate. Remote state is observed
// only through NodeMeta and logging; there is no local state to merge it
// into.
func (a *Advertiser) MergeRemoteState(buf []byte, join bool) {}

// eventDelegate logs cluster membership churn. It exists only to make
// informational gossip events visible in logs; it has no effect on token
// issuance.
type eventDelegate struct {
	advertiser *Advertiser
}

func (d *eventDelegate) NotifyJoin(node *memberlist.Node) {
	d.advertiser.logger.Info("membership: node joined", zap.String("node", node.Name), zap.String("addr", node.Address()))
}

func (d *eventDelegate) NotifyLeave(node *memberlist.Node) {
	d.advertiser.logger.Info("membership: node left", zap.String("node", node.Name))
}

func (d *eventDelegate) NotifyUpdate(node *memberlist.Node) {
	d.advertiser.logger.Debug("membership: node updated", zap.String("node", node.Name))
}
