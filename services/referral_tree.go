package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bounds applied to every tree build. Work is O(per^depth) so both are hard caps.
const (
	DefaultTreeDepth = 3
	MaxTreeDepth     = 6
	DefaultTreePer   = 20
	MaxTreePer       = 100
)

// TotalsSource computes an earner's commission totals
type TotalsSource interface {
	TotalsByStatus(ctx context.Context, earnerID primitive.ObjectID) (models.CommissionTotals, error)
}

// ReferralTreeService renders bounded views of the referral graph
type ReferralTreeService struct {
	graph  ReferralGraph
	totals TotalsSource
	cache  *TreeCache
	log    logrus.FieldLogger
}

// NewReferralTreeService creates the reporter; cache may be nil
func NewReferralTreeService(graph ReferralGraph, totals TotalsSource, cache *TreeCache, log logrus.FieldLogger) *ReferralTreeService {
	return &ReferralTreeService{graph: graph, totals: totals, cache: cache, log: log}
}

// NormalizeTreeQuery trims the root and clamps depth to [0, 6] and per to [1, 100]
func NormalizeTreeQuery(q models.TreeQuery) models.TreeQuery {
	q.Root = strings.TrimSpace(q.Root)
	if q.Depth < 0 {
		q.Depth = 0
	}
	if q.Depth > MaxTreeDepth {
		q.Depth = MaxTreeDepth
	}
	if q.PerNode < 1 {
		q.PerNode = 1
	}
	if q.PerNode > MaxTreePer {
		q.PerNode = MaxTreePer
	}
	return q
}

// BuildTree resolves the root by id, referral code or email and expands it
// depth-first. ErrRootNotFound means no such user, which is distinct from a
// root without children.
func (s *ReferralTreeService) BuildTree(ctx context.Context, q models.TreeQuery) (*models.TreeNode, error) {
	q = NormalizeTreeQuery(q)
	if q.Root == "" {
		return nil, ErrRootNotFound
	}

	if node, ok := s.cache.Get(ctx, q); ok {
		return node, nil
	}

	root, err := s.graph.ResolveUserByIdentifier(ctx, q.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve tree root %q: %w", q.Root, err)
	}
	if root == nil {
		return nil, ErrRootNotFound
	}

	tree, err := s.buildNode(ctx, root, q.Depth, q.PerNode, q.IncludeTotals)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, q, tree)
	return tree, nil
}

func (s *ReferralTreeService) buildNode(ctx context.Context, user *models.ReferralMember, depth, per int, includeTotals bool) (*models.TreeNode, error) {
	node := &models.TreeNode{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		ReferralCode: user.ReferralCode,
		MLMActive:    user.MLMActive,
		ReferredAt:   user.ReferredAt,
		Children:     []*models.TreeNode{},
	}
	if url := user.AvatarURL(); url != "" {
		node.Avatar = &url
	}

	if includeTotals {
		totals, err := s.totals.TotalsByStatus(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		node.Totals = &totals
	}

	count, err := s.graph.CountDirectChildren(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count children of %s: %w", user.ID.Hex(), err)
	}
	node.ChildrenCount = count

	if depth <= 0 || count == 0 {
		return node, nil
	}

	children, err := s.graph.GetDirectChildren(ctx, user.ID, per)
	if err != nil {
		return nil, fmt.Errorf("load children of %s: %w", user.ID.Hex(), err)
	}

	for i := range children {
		if i >= per {
			break
		}
		child, err := s.buildNode(ctx, &children[i], depth-1, per, includeTotals)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}
