package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"user-account-service/internal/domain"
)

func TestListFilter(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "is_deleted", Value: false}}, listFilter("  "))

	f := listFilter("a.b")
	require.Len(t, f, 2)
	assert.Equal(t, "$or", f[1].Key)
	or := f[1].Value.(bson.A)
	require.Len(t, or, 2)
	re := or[0].(bson.D)[0].Value.(bson.Regex)
	assert.Equal(t, `a\.b`, re.Pattern)
	assert.Equal(t, "i", re.Options)
	assert.Equal(t, "email", or[1].(bson.D)[0].Key)
}

func TestListSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, listSort(domain.SortName))
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, listSort(domain.SortID))
	assert.Equal(t, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}, listSort(domain.SortNone))
}

func TestDomainPipeline(t *testing.T) {
	p := domainPipeline()
	require.Len(t, p, 2)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.D{{Key: "is_deleted", Value: false}}, p[0][0].Value)
	assert.Equal(t, "$group", p[1][0].Key)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "x.com", domainOf("a@x.com"))
	assert.Equal(t, "", domainOf("no-at-sign"))
}
