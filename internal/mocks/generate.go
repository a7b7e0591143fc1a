package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name FootballProvider --dir ../domain/livematch --output domain/livematch --outpkg livematchmock --filename football_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name BasketballProvider --dir ../domain/livematch --output domain/livematch --outpkg livematchmock --filename basketball_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SnapshotPublisher --dir ../domain/livematch --output domain/livematch --outpkg livematchmock --filename snapshot_publisher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/rawdata --output domain/rawdata --outpkg rawdatamock --filename repository_mock.go
