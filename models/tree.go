package models

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"gorm.io/gorm"
)

// Tree tables keep a nested set (lft, rgt) so a subtree is one range scan.

type CostCenter struct {
	Name             string `gorm:"primaryKey;size:140" json:"name"`
	CostCenterName   string `gorm:"size:140;not null" json:"cost_center_name"`
	Company          string `gorm:"index;size:140;not null" json:"company"`
	ParentCostCenter string `gorm:"index;size:140" json:"parent_cost_center"`
	IsGroup          bool   `gorm:"not null;default:false" json:"is_group"`
	Lft              int    `gorm:"index;not null;default:0" json:"lft"`
	Rgt              int    `gorm:"index;not null;default:0" json:"rgt"`
}

type Project struct {
	Name        string `gorm:"primaryKey;size:140" json:"name"`
	ProjectName string `gorm:"size:140;not null" json:"project_name"`
	Company     string `gorm:"index;size:140" json:"company"`
}

type NewCostCenter struct {
	Name             string `json:"name" validate:"required"`
	Company          string `json:"company" validate:"required"`
	ParentCostCenter string `json:"parent_cost_center"`
	IsGroup          bool   `json:"is_group"`
}

func CreateCostCenter(ctx context.Context, input *NewCostCenter) (*CostCenter, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	cc := CostCenter{
		Name:             input.Name,
		CostCenterName:   input.Name,
		Company:          input.Company,
		ParentCostCenter: input.ParentCostCenter,
		IsGroup:          input.IsGroup,
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cc).Error; err != nil {
			return err
		}
		return RebuildTree(tx, "cost_centers", "parent_cost_center")
	})
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// RebuildTree renumbers lft/rgt of a whole tree table from its parent column.
// Siblings are numbered in name order.
func RebuildTree(tx *gorm.DB, table, parentColumn string) error {
	if !utils.IsIdentifier(table) || !utils.IsIdentifier(parentColumn) {
		return utils.NewValidationError(utils.ErrInvalidFilter, "tree %s.%s", table, parentColumn)
	}
	var nodes []struct {
		Name   string
		Parent string
	}
	sql := fmt.Sprintf("SELECT name, COALESCE(%s, '') AS parent FROM %s ORDER BY name", parentColumn, table)
	if err := tx.Raw(sql).Scan(&nodes).Error; err != nil {
		return err
	}
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.Name] = true
	}
	children := make(map[string][]string)
	for _, n := range nodes {
		parent := n.Parent
		if !known[parent] {
			parent = ""
		}
		children[parent] = append(children[parent], n.Name)
	}
	for _, c := range children {
		sort.Strings(c)
	}

	type bounds struct{ lft, rgt int }
	numbered := make(map[string]bounds, len(nodes))
	counter := 0
	var walk func(name string)
	walk = func(name string) {
		counter++
		lft := counter
		for _, child := range children[name] {
			if _, seen := numbered[child]; !seen {
				walk(child)
			}
		}
		counter++
		numbered[name] = bounds{lft: lft, rgt: counter}
	}
	for _, root := range children[""] {
		walk(root)
	}

	update := fmt.Sprintf("UPDATE %s SET lft = ?, rgt = ? WHERE name = ?", table)
	for name, b := range numbered {
		if err := tx.Exec(update, b.lft, b.rgt, name).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetTreeWithChildren expands every name to itself plus all of its descendants.
// An unknown name is a validation error.
func GetTreeWithChildren(ctx context.Context, table string, names []string) ([]string, error) {
	names = utils.UniqueSlice(names)
	if len(names) == 0 {
		return []string{}, nil
	}
	if !utils.IsIdentifier(table) {
		return nil, utils.NewValidationError(utils.ErrInvalidFilter, "tree %s", table)
	}

	var parents []string
	db := config.GetDB()
	if err := db.WithContext(ctx).Table(table).Where("name IN ?", names).Pluck("name", &parents).Error; err != nil {
		return nil, err
	}
	if len(parents) != len(names) {
		found := make(map[string]bool, len(parents))
		for _, p := range parents {
			found[p] = true
		}
		for _, n := range names {
			if !found[n] {
				return nil, utils.NewValidationError(utils.ErrInvalidFilter, "%s %q does not exist", table, n)
			}
		}
	}

	sql := fmt.Sprintf(`SELECT DISTINCT child.name
		FROM %[1]s AS child
		JOIN %[1]s AS parent ON child.lft >= parent.lft AND child.rgt <= parent.rgt
		WHERE parent.name IN @names
		ORDER BY child.name`, table)
	result := []string{}
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{"names": names}).Scan(&result).Error; err != nil {
		return nil, err
	}
	// rows never numbered (lft = rgt = 0) still match themselves
	return utils.UniqueSlice(append(result, names...)), nil
}
