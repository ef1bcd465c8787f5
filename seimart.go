package seimart

import (
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/seimart/seimart/common"
	"github.com/seimart/seimart/config"
	"github.com/seimart/seimart/schema"
	"time"
)

type Seimart struct {
	store  *Store
	engine *gin.Engine

	wdb       *Wdb
	cache     *Cache
	config    *config.Config
	scheduler *gocron.Scheduler

	wallet   Wallet // treasury wallet; optional, used for balance metrics
	kwriter  *KWriter
	chainId  int64
	network  string
	treasury string

	priceFeedUrl string
}

func New(
	boltDirPath, mysqlDsn string, sqliteDir string, useSqlite bool,
	rpcUrl, treasuryKeyHex string, chainId int64, network string,
	useS3 bool, s3AccKey, s3SecretKey, s3BucketPrefix, s3Region, s3Endpoint string,
	useKafka bool, kafkaUri string,
	priceFeedUrl string,
) *Seimart {
	var err error
	var KVDb *Store
	if useS3 {
		KVDb, err = NewS3Store(s3AccKey, s3SecretKey, s3Region, s3BucketPrefix, s3Endpoint)
	} else {
		KVDb, err = NewBoltStore(boltDirPath)
	}
	if err != nil {
		panic(err)
	}

	var wdb *Wdb
	if useSqlite {
		wdb = NewSqliteDb(sqliteDir)
	} else {
		wdb = NewMysqlDb(mysqlDsn)
	}
	if err = wdb.Migrate(); err != nil {
		panic(err)
	}

	var wallet Wallet
	treasury := ""
	if treasuryKeyHex != "" {
		seiWallet, err := NewSeiWallet(rpcUrl, treasuryKeyHex)
		if err != nil {
			panic(err)
		}
		wallet = seiWallet
		treasury = seiWallet.Address().Hex()
	}

	var kwriter *KWriter
	if useKafka {
		kwriter, err = NewKWriter(PurchaseTopic, kafkaUri)
		if err != nil {
			panic(err)
		}
	}

	m := &Seimart{
		store:        KVDb,
		engine:       gin.Default(),
		wdb:          wdb,
		cache:        NewCache(),
		config:       config.New(mysqlDsn, sqliteDir, useSqlite),
		scheduler:    gocron.NewScheduler(time.UTC),
		wallet:       wallet,
		kwriter:      kwriter,
		chainId:      chainId,
		network:      network,
		treasury:     treasury,
		priceFeedUrl: priceFeedUrl,
	}

	m.cache.UpdateInfo(schema.RespInfo{
		Network:     network,
		ChainId:     chainId,
		Treasury:    treasury,
		FeePermille: m.config.GetPlatformFeePermille(),
	})
	return m
}

func (s *Seimart) Run(port string) {
	s.config.Run()
	go s.runAPI(port)
	go s.runJobs()

	common.NewMetricServer()
}

func (s *Seimart) Close() {
	if s.kwriter != nil {
		s.kwriter.Close()
	}
	s.config.Close()
	s.wdb.Close()
	if err := s.store.Close(); err != nil {
		log.Error("store close", "err", err)
	}
}
