package crowdfund

// Contract names accepted by Backend.DeployContract.
const (
	CampaignContract = "Campaign"
	FactoryContract  = "CampaignFactory"
)

// CampaignABI is the JSON ABI of a campaign.
const CampaignABI = `[
	{
		"type": "constructor",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "minimum", "type": "uint256"},
			{"name": "creator", "type": "address"}
		]
	},
	{
		"name": "contribute",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [],
		"outputs": []
	},
	{
		"name": "createRequest",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "description", "type": "string"},
			{"name": "value", "type": "uint256"},
			{"name": "recipient", "type": "address"}
		],
		"outputs": []
	},
	{
		"name": "approveRequest",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "index", "type": "uint256"}],
		"outputs": []
	},
	{
		"name": "completeRequest",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "index", "type": "uint256"}],
		"outputs": []
	},
	{
		"name": "isRequestApprovedByMe",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "index", "type": "uint256"}],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"name": "manager",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "address"}]
	},
	{
		"name": "minimumContribution",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "contributors",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "", "type": "address"}],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"name": "contributorsCount",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "requests",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "", "type": "uint256"}],
		"outputs": [
			{"name": "description", "type": "string"},
			{"name": "value", "type": "uint256"},
			{"name": "recipient", "type": "address"},
			{"name": "complete", "type": "bool"},
			{"name": "approvalsCount", "type": "uint256"}
		]
	},
	{
		"name": "getRequestsCount",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "getSummary",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{"name": "minimumContribution", "type": "uint256"},
			{"name": "balance", "type": "uint256"},
			{"name": "requestsCount", "type": "uint256"},
			{"name": "contributorsCount", "type": "uint256"},
			{"name": "manager", "type": "address"}
		]
	}
]`

// FactoryABI is the JSON ABI of the campaign factory.
const FactoryABI = `[
	{
		"name": "createCampaign",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "minimum", "type": "uint256"}],
		"outputs": []
	},
	{
		"name": "getDeployedContracts",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "address[]"}]
	}
]`

var (
	campaignABI = MustParseABI(CampaignABI)
	factoryABI  = MustParseABI(FactoryABI)
)
