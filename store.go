package seimart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/seimart/seimart/rawdb"
	"github.com/seimart/seimart/schema"
)

// Store keeps research artifact content outside the SQL database; only
// metadata lives in gorm rows.
type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(boltDirPath string) (*Store, error) {
	boltDb, err := rawdb.NewBoltDB(boltDirPath)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: boltDb}, nil
}

func NewS3Store(accKey, secretKey, region, bucketPrefix, endpoint string) (*Store, error) {
	s3Db, err := rawdb.NewS3DB(accKey, secretKey, region, bucketPrefix, endpoint)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: s3Db}, nil
}

func NewMongoStore(ctx context.Context, uri string) (*Store, error) {
	mongoDb, err := rawdb.NewMongoDB(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: mongoDb}, nil
}

func (s *Store) SaveArtifact(researchId string, content []byte) error {
	if len(content) == 0 {
		return schema.ErrNullData
	}
	if len(content) > schema.MaxArtifactSize {
		return schema.ErrDataTooBig
	}
	sum := sha256.Sum256(content)
	meta := schema.ArtifactMeta{
		ResearchId: researchId,
		Size:       int64(len(content)),
		Sha256:     hex.EncodeToString(sum[:]),
	}
	metaBy, err := json.Marshal(&meta)
	if err != nil {
		return err
	}
	if err := s.KVDb.Put(schema.ArtifactBucket, researchId, content); err != nil {
		return err
	}
	return s.KVDb.Put(schema.ArtifactMetaBucket, researchId, metaBy)
}

func (s *Store) LoadArtifact(researchId string) ([]byte, error) {
	return s.KVDb.Get(schema.ArtifactBucket, researchId)
}

func (s *Store) LoadArtifactMeta(researchId string) (meta schema.ArtifactMeta, err error) {
	data, err := s.KVDb.Get(schema.ArtifactMetaBucket, researchId)
	if err != nil {
		return
	}
	err = json.Unmarshal(data, &meta)
	return
}

func (s *Store) ExistArtifact(researchId string) bool {
	return s.KVDb.Exist(schema.ArtifactBucket, researchId)
}

func (s *Store) DelArtifact(researchId string) error {
	if !s.ExistArtifact(researchId) {
		return nil
	}
	if err := s.KVDb.Delete(schema.ArtifactMetaBucket, researchId); err != nil {
		return err
	}
	return s.KVDb.Delete(schema.ArtifactBucket, researchId)
}

func (s *Store) Close() error {
	return s.KVDb.Close()
}
