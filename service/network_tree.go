package service

import (
	"context"

	"gitlab.com/creatorhub/commission_api/model"
)

// GetNetworkTree renders the downline of username as a nested tree of at most
// maxDepth levels. A creator already rendered is never expanded twice.
func (service *Service) GetNetworkTree(ctx context.Context, username string, maxDepth int) ([]*model.TreeNode, error) {
	creator, err := service.getCreatorByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	depth := clampDepth(maxDepth)
	if tree, ok := service.trees.Get(ctx, creator.ID, depth); ok {
		return tree, nil
	}

	visited := map[string]struct{}{creator.ID: {}}
	tree, err := service.buildTree(ctx, creator.ID, depth, visited)
	if err != nil {
		return nil, err
	}
	service.trees.Set(ctx, creator.ID, depth, tree)
	return tree, nil
}

func (service *Service) buildTree(ctx context.Context, creatorID string, depth int, visited map[string]struct{}) ([]*model.TreeNode, error) {
	nodes := []*model.TreeNode{}
	if depth < 1 {
		return nodes, nil
	}
	downline, err := service.repo.GetDirectDownline(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	for _, m := range downline {
		if _, ok := visited[m.CreatorID]; ok {
			continue
		}
		visited[m.CreatorID] = struct{}{}
		children, err := service.buildTree(ctx, m.CreatorID, depth-1, visited)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &model.TreeNode{Membership: m, Children: children})
	}
	return nodes, nil
}
