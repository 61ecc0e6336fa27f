package parser

import (
	"github.com/xlab/treeprint"
)

// Tree renders the expression as an AND/OR tree so users can see how
// the matchmaker will group their requirements clauses.
func (e *Expression) Tree() string {
	root := treeprint.NewWithRoot("requirements")
	printExpressionTree(root, e)
	return root.String()
}

func printExpressionTree(parentTreeRoot treeprint.Tree, e *Expression) {
	if len(e.Or) == 1 {
		printAndTree(parentTreeRoot, e.Or[0])
		return
	}

	branch := parentTreeRoot.AddBranch("OR")
	for _, a := range e.Or {
		printAndTree(branch, a)
	}
}

func printAndTree(parentTreeRoot treeprint.Tree, a *AndExpr) {
	if len(a.And) == 1 {
		printTermTree(parentTreeRoot, a.And[0])
		return
	}

	branch := parentTreeRoot.AddBranch("AND")
	for _, t := range a.And {
		printTermTree(branch, t)
	}
}

func printTermTree(parentTreeRoot treeprint.Tree, t *Term) {
	if t.Group != nil {
		printExpressionTree(parentTreeRoot, t.Group)
		return
	}
	parentTreeRoot.AddNode(t.Comparison.String())
}
