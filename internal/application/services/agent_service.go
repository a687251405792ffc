package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

type AgentService struct {
	api      ports.AgentAPI
	cache    *query.Cache
	vendorID string
	create   *query.Mutation[*agent.CreateVendorUserRequest, struct{}]
}

func NewAgentService(api ports.AgentAPI, cache *query.Cache, vendorID string, logger *logrus.Logger) *AgentService {
	s := &AgentService{api: api, cache: cache, vendorID: vendorID}
	s.create = query.NewMutation("create_vendor_user", cache, func(ctx context.Context, req *agent.CreateVendorUserRequest) (struct{}, error) {
		return struct{}{}, api.CreateVendorUser(ctx, req)
	}, func(*agent.CreateVendorUserRequest) []query.Key { return []query.Key{s.ListKey()} }, logger)
	return s
}

func (s *AgentService) ListKey() query.Key { return query.NewKey("agents", s.vendorID) }

func (s *AgentService) ListAgents(ctx context.Context) *ports.AgentListView {
	agents, st := query.Get(ctx, s.cache, s.ListKey(), func(ctx context.Context) ([]agent.Agent, error) {
		return s.api.ListAgents(ctx, s.vendorID)
	})
	if agents == nil {
		agents = []agent.Agent{}
	}
	return &ports.AgentListView{LoadState: loadState(st), Agents: agents}
}

func (s *AgentService) CreateVendorUser(ctx context.Context, req *agent.CreateVendorUserRequest) error {
	req.VendorID = s.vendorID
	if err := req.Validate(); err != nil {
		return err
	}
	res := s.create.Mutate(ctx, req)
	if !res.OK() {
		return mutationError(res.Err, res.Message)
	}
	return nil
}

var _ ports.AgentService = (*AgentService)(nil)
