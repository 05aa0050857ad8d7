package neo4j

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"

	"socialgraph/application/ports"
)

func TestClassifyWriteErrorConstraintViolation(t *testing.T) {
	err := classifyWriteError(&db.Neo4jError{
		Code: constraintViolationCode,
		Msg:  "Node(0) already exists with label `User` and property `username`",
	})

	assert.True(t, errors.Is(err, ports.ErrConstraintViolation))
}

func TestClassifyWriteErrorPassesOthersThrough(t *testing.T) {
	plain := fmt.Errorf("connection reset")
	assert.Same(t, plain, classifyWriteError(plain))

	neoErr := &db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad cypher"}
	assert.Equal(t, error(neoErr), classifyWriteError(neoErr))
}
